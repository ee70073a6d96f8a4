package tape

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ssargent/tapebox/pkg/codec"
)

// Tape is the logical view of a tape file reconstructed by a scan
type Tape struct {
	Items []Item
	Size  int64 // size of the file in bytes

	// Err is set to a *FormatError when the scan stopped before the end of
	// the file. Items parsed up to that point are still valid.
	Err error
}

// Truncated reports whether the scan stopped on unrecognized data
func (t *Tape) Truncated() bool {
	return t.Err != nil
}

// End returns the offset just past the last parsed item
func (t *Tape) End() int64 {
	if len(t.Items) == 0 {
		return 0
	}
	last := t.Items[len(t.Items)-1]
	return last.Offset + last.Size
}

// Scanner reconstructs tapes from a file
type Scanner struct {
	path string
}

// NewScanner creates a scanner for the tape file at path
func NewScanner(path string) *Scanner {
	return &Scanner{path: path}
}

// Scan reads the whole tape file and parses it. A missing file is an empty tape.
func (s *Scanner) Scan() (*Tape, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Tape{}, nil
		}
		return nil, errors.Wrapf(err, "read tape %s", s.path)
	}

	t := Parse(data)
	if fe, ok := t.Err.(*FormatError); ok {
		log.WithFields(log.Fields{
			"path":   s.path,
			"offset": fe.Offset,
			"tag":    fe.Tag,
			"items":  len(t.Items),
		}).Warn("unrecognized data format, scan truncated")
	}

	return t, nil
}

// Parse walks data from offset 0 and builds the ordered item list
func Parse(data []byte) *Tape {
	t := &Tape{Size: int64(len(data))}
	size := int64(len(data))
	var pos int64

	for pos < size {
		tag := data[pos]

		switch tag {
		case codec.TagHeader, codec.TagDeleted:
			h, err := codec.DecodeHeader(data[pos:])
			if err != nil {
				t.Err = &FormatError{Offset: pos, Tag: tag, Reason: err.Error()}
				return t
			}

			nameStart := pos + codec.HeaderSize
			nameEnd := nameStart + int64(h.NameLength)
			if nameEnd > size {
				t.Err = &FormatError{Offset: pos, Tag: tag, Reason: "name runs past end of tape"}
				return t
			}
			name := string(data[nameStart:nameEnd])

			if tag == codec.TagDeleted {
				// the frozen fields still describe the whole entry, end marker included
				if pos+h.Span() > size {
					t.Err = &FormatError{Offset: pos, Tag: tag, Reason: "deleted region runs past end of tape"}
					return t
				}
				t.Items = append(t.Items, Item{
					Kind:      ItemDeleted,
					Offset:    pos,
					Size:      h.Span(),
					Timestamp: h.Timestamp,
					Location:  h.Location,
					Name:      name,
					Length:    h.DataLength,
				})
				pos += h.Span()
				continue
			}

			dataEnd := nameEnd + int64(h.DataLength)
			if dataEnd > size {
				t.Err = &FormatError{Offset: pos, Tag: tag, Reason: "payload runs past end of tape"}
				return t
			}
			t.Items = append(t.Items,
				Item{
					Kind:      ItemHeader,
					Offset:    pos,
					Size:      nameEnd - pos,
					Timestamp: h.Timestamp,
					Location:  h.Location,
					Name:      name,
					Length:    h.DataLength,
				},
				Item{
					Kind:   ItemPayload,
					Offset: nameEnd,
					Size:   int64(h.DataLength),
					Data:   data[nameEnd:dataEnd],
				},
			)
			pos = dataEnd

		case codec.TagEnd:
			t.Items = append(t.Items, Item{Kind: ItemEnd, Offset: pos, Size: 1})
			pos++

		default:
			t.Err = &FormatError{Offset: pos, Tag: tag}
			return t
		}
	}

	return t
}
