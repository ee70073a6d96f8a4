package tape

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Defaults used when no configuration is supplied
const (
	DefaultTapeFile = "basic_data.bin"
	DefaultDumpFile = "debug_output.txt"
)

// ItemKind identifies a logical item reconstructed by the scanner
type ItemKind int

const (
	ItemHeader ItemKind = iota + 1
	ItemPayload
	ItemEnd
	ItemDeleted
)

func (k ItemKind) String() string {
	switch k {
	case ItemHeader:
		return "header"
	case ItemPayload:
		return "payload"
	case ItemEnd:
		return "end"
	case ItemDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// Item is one logical element of a scanned tape
type Item struct {
	Kind   ItemKind
	Offset int64 // first byte of the item on tape
	Size   int64 // bytes consumed by the item

	// header and deleted items
	Timestamp int64
	Location  int32
	Name      string
	Length    int32 // stored data length

	// payload items
	Data []byte
}

// IsFiller reports whether a deleted item only pads the tail of a reused slot
func (it *Item) IsFiller() bool {
	return it.Kind == ItemDeleted && it.Location == 0
}

// SlotPolicy decides when and how a tombstoned region is reused
type SlotPolicy string

const (
	// PolicyOverwrite writes new entries in place inside a tombstone's span
	PolicyOverwrite SlotPolicy = "overwrite"
	// PolicySplice inserts new entries at a tombstone's offset and shifts the rest of the tape
	PolicySplice SlotPolicy = "splice"
)

// ParseSlotPolicy converts a configuration value into a SlotPolicy
func ParseSlotPolicy(s string) (SlotPolicy, error) {
	switch SlotPolicy(s) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicySplice:
		return PolicySplice, nil
	default:
		return "", errors.Errorf("unknown slot policy %q", s)
	}
}

// Config holds configuration for a tape store
type Config struct {
	FilePath string           // Path to the tape file
	Policy   SlotPolicy       // Slot reuse policy
	Fsync    bool             // Fsync after every write
	Clock    func() time.Time // Timestamp source, defaults to time.Now
}

// WriterConfig holds configuration for the tape writer
type WriterConfig struct {
	FilePath string
	Fsync    bool
}

// ProgramInfo describes an active entry on the tape
type ProgramInfo struct {
	Name      string    `json:"name"`
	Location  int32     `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	Length    int32     `json:"length"`
	Offset    int64     `json:"offset"`
}

// Stats holds statistics about a tape
type Stats struct {
	Programs     int   `json:"programs"`
	NextLocation int32 `json:"next_location"`
	Tombstones   int   `json:"tombstones"`
	Fillers      int   `json:"fillers"`
	FileSize     int64 `json:"file_size"`
	ParsedBytes  int64 `json:"parsed_bytes"`
	Truncated    bool  `json:"truncated"`
}

// Errors
var (
	ErrProgramNotFound = errors.New("program not found")
	ErrEmptyName       = errors.New("program name cannot be empty")
	ErrInvalidEncoding = errors.New("program name and data must be valid UTF-8")
	ErrProgramTooLarge = errors.New("program exceeds maximum size")
	ErrTapeTruncated   = errors.New("tape contains unrecognized data")
)

// FormatError marks the point where a scan stopped on unrecognized data
type FormatError struct {
	Offset int64
	Tag    byte
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unrecognized data at offset %d (tag 0x%02x): %s", e.Offset, e.Tag, e.Reason)
	}
	return fmt.Sprintf("unrecognized data at offset %d (tag 0x%02x)", e.Offset, e.Tag)
}
