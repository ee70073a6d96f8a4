package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Record tags
const (
	TagHeader  byte = 0x01
	TagEnd     byte = 0x02
	TagDeleted byte = 0x03
)

const (
	// FixedFieldsSize is Timestamp(8) + Location(4) + NameLength(4) + DataLength(4)
	FixedFieldsSize = 20
	// HeaderSize is the tag byte plus the fixed fields
	HeaderSize = 1 + FixedFieldsSize
	// EntryOverhead is the number of bytes an entry adds around its name and data
	EntryOverhead = HeaderSize + 1
	// MinFillerSize is the smallest span a filler tombstone can occupy
	MinFillerSize = EntryOverhead
)

// Header holds the fixed fields shared by header and deleted records
type Header struct {
	Tag        byte
	Timestamp  int64 // ms since epoch
	Location   int32
	NameLength int32
	DataLength int32
}

// Span returns the number of bytes the whole entry occupies on tape,
// including the name, the payload and the trailing end marker.
func (h Header) Span() int64 {
	return HeaderSize + int64(h.NameLength) + int64(h.DataLength) + 1
}

// Time returns the header timestamp in UTC
func (h Header) Time() time.Time {
	return time.UnixMilli(h.Timestamp).UTC()
}

// RecordCodec encodes tape records
type RecordCodec struct {
	now func() time.Time
}

// NewRecordCodec creates a new record codec that stamps records with the wall clock
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{now: time.Now}
}

// WithClock returns a copy of the codec that takes timestamps from now
func (c *RecordCodec) WithClock(now func() time.Time) *RecordCodec {
	if now == nil {
		now = time.Now
	}
	return &RecordCodec{now: now}
}

// EncodeHeader builds the 21 byte preamble of an entry followed by the name bytes.
// Format: [Tag(1)][Timestamp(8)][Location(4)][NameLength(4)][DataLength(4)][Name]
func (c *RecordCodec) EncodeHeader(name string, payloadLength int, location int32) []byte {
	if len(name) > math.MaxInt32 {
		panic("name too large")
	}
	if payloadLength > math.MaxInt32 || payloadLength < 0 {
		panic("invalid payload length")
	}

	buf := make([]byte, HeaderSize+len(name))
	putHeader(buf, Header{
		Tag:        TagHeader,
		Timestamp:  c.now().UnixMilli(),
		Location:   location,
		NameLength: int32(len(name)),
		DataLength: int32(payloadLength),
	})
	copy(buf[HeaderSize:], name)

	return buf
}

// EncodeProgram serializes a complete entry: header, name, payload and end marker
func (c *RecordCodec) EncodeProgram(name string, payload []byte, location int32) []byte {
	buf := make([]byte, 0, ProgramSize(name, len(payload)))
	buf = append(buf, c.EncodeHeader(name, len(payload), location)...)
	buf = append(buf, payload...)
	return append(buf, TagEnd)
}

// EncodeFiller builds a nameless deleted entry that occupies exactly span bytes.
// Fillers carry location 0 so they can be told apart from real tombstones.
func (c *RecordCodec) EncodeFiller(span int64) ([]byte, error) {
	if span < MinFillerSize {
		return nil, fmt.Errorf("filler span %d is below minimum %d", span, MinFillerSize)
	}
	if span-EntryOverhead > math.MaxInt32 {
		return nil, fmt.Errorf("filler span %d too large", span)
	}

	buf := make([]byte, span)
	putHeader(buf, Header{
		Tag:        TagDeleted,
		Timestamp:  c.now().UnixMilli(),
		Location:   0,
		NameLength: 0,
		DataLength: int32(span - EntryOverhead),
	})
	buf[span-1] = TagEnd

	return buf, nil
}

// DecodeHeader decodes the tag and fixed fields at the start of buf
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("data too short for record header: %d < %d", len(buf), HeaderSize)
	}

	h := Header{
		Tag:        buf[0],
		Timestamp:  int64(binary.LittleEndian.Uint64(buf[1:9])),
		Location:   int32(binary.LittleEndian.Uint32(buf[9:13])),
		NameLength: int32(binary.LittleEndian.Uint32(buf[13:17])),
		DataLength: int32(binary.LittleEndian.Uint32(buf[17:21])),
	}
	if h.NameLength < 0 || h.DataLength < 0 {
		return Header{}, fmt.Errorf("negative field length: name=%d data=%d", h.NameLength, h.DataLength)
	}

	return h, nil
}

// ProgramSize returns the encoded size of an entry with the given name and payload length
func ProgramSize(name string, payloadLength int) int {
	return EntryOverhead + len(name) + payloadLength
}

func putHeader(buf []byte, h Header) {
	buf[0] = h.Tag
	binary.LittleEndian.PutUint64(buf[1:], uint64(h.Timestamp))
	binary.LittleEndian.PutUint32(buf[9:], uint32(h.Location))
	binary.LittleEndian.PutUint32(buf[13:], uint32(h.NameLength))
	binary.LittleEndian.PutUint32(buf[17:], uint32(h.DataLength))
}
