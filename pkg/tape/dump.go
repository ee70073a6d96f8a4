package tape

import (
	"fmt"
	"strings"
	"time"
)

// dumpTimeFormat matches an ISO-8601 timestamp with milliseconds in UTC
const dumpTimeFormat = "2006-01-02T15:04:05.000Z"

// FormatDump renders a human-readable line for every item of t. A truncated
// scan ends with a line naming the offset of the unrecognized data.
func FormatDump(t *Tape) string {
	lines := make([]string, 0, len(t.Items)+1)

	for _, it := range t.Items {
		switch it.Kind {
		case ItemHeader:
			lines = append(lines, fmt.Sprintf("Header (Name: %s, Timestamp: %s, Location: %d, Length: %d)",
				it.Name, time.UnixMilli(it.Timestamp).UTC().Format(dumpTimeFormat), it.Location, it.Length))
		case ItemEnd:
			lines = append(lines, "EOF_MARKER")
		case ItemDeleted:
			lines = append(lines, fmt.Sprintf("Deleted Slot (Length: %d)", it.Length))
		default:
			lines = append(lines, fmt.Sprintf("Data: %s", it.Data))
		}
	}

	if fe, ok := t.Err.(*FormatError); ok {
		lines = append(lines, fmt.Sprintf("Unrecognized data at offset %d (tag 0x%02x)", fe.Offset, fe.Tag))
	}

	return strings.Join(lines, "\n")
}
