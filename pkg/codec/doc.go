// Package codec provides record serialization for the TapeBox tape format.
//
// A tape is a single flat file holding a concatenation of entries. Every
// record on the tape starts with a one-byte tag:
//
//	0x01 Header   [Tag(1)][Timestamp(8)][Location(4)][NameLength(4)][DataLength(4)][Name][Data]
//	0x02 End      [Tag(1)]
//	0x03 Deleted  same layout as Header, tag flipped in place
//
// All integers are signed and little-endian. Timestamp is milliseconds since
// the Unix epoch. A complete entry is a Header, its name and payload bytes,
// then a single End marker:
//
//	[Header(21)][Name][Data][End(1)]
//
// so the encoded size of a program is 22 + len(name) + len(data).
//
// # Tombstones
//
// Deleting an entry rewrites only its tag byte (0x01 -> 0x03). The fixed
// fields stay frozen, so the full physical span of a tombstone is still
// derivable from its name and data lengths (see [Header.Span]). A deleted
// record written with location 0 and an empty name is a filler: it pads the
// unused tail of a reused slot and is never recoverable.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//	buf := c.EncodeProgram("HELLO", []byte("10 PRINT X"), 1)
//
//	h, err := codec.DecodeHeader(buf)
//	if err != nil {
//	    return err
//	}
//	name := buf[codec.HeaderSize : codec.HeaderSize+int(h.NameLength)]
//
// The timestamp source is injectable through [RecordCodec.WithClock] so that
// encoded bytes are deterministic in tests.
package codec
