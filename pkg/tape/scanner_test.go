package tape

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tapebox/pkg/codec"
)

var testTime = time.Date(2024, 6, 22, 8, 0, 0, 0, time.UTC)

func testClock() time.Time { return testTime }

func testCodec() *codec.RecordCodec {
	return codec.NewRecordCodec().WithClock(testClock)
}

func buildTape(entries ...[]byte) []byte {
	var buf []byte
	for _, e := range entries {
		buf = append(buf, e...)
	}
	return buf
}

func TestParse_EmptyTape(t *testing.T) {
	tp := Parse(nil)
	assert.Empty(t, tp.Items)
	assert.False(t, tp.Truncated())
	assert.Equal(t, int64(0), tp.End())
}

func TestParse_HeaderPayloadEnd(t *testing.T) {
	c := testCodec()
	data := buildTape(
		c.EncodeProgram("HELLO", []byte("10 PRINT X"), 1),
		c.EncodeProgram("B", []byte("20 GOTO 10"), 2),
	)

	tp := Parse(data)
	require.False(t, tp.Truncated())
	require.Len(t, tp.Items, 6)

	header := tp.Items[0]
	assert.Equal(t, ItemHeader, header.Kind)
	assert.Equal(t, int64(0), header.Offset)
	assert.Equal(t, "HELLO", header.Name)
	assert.Equal(t, int32(1), header.Location)
	assert.Equal(t, int32(10), header.Length)
	assert.Equal(t, testTime.UnixMilli(), header.Timestamp)
	assert.Equal(t, int64(codec.HeaderSize+5), header.Size)

	payload := tp.Items[1]
	assert.Equal(t, ItemPayload, payload.Kind)
	assert.Equal(t, "10 PRINT X", string(payload.Data))
	assert.Equal(t, int64(codec.HeaderSize+5), payload.Offset)

	assert.Equal(t, ItemEnd, tp.Items[2].Kind)
	assert.Equal(t, int64(36), tp.Items[2].Offset)

	second := tp.Items[3]
	assert.Equal(t, "B", second.Name)
	assert.Equal(t, int64(37), second.Offset)
	assert.Equal(t, int64(len(data)), tp.End())
	assert.Equal(t, int64(len(data)), tp.Size)
}

func TestParse_DeletedEntry(t *testing.T) {
	c := testCodec()
	first := c.EncodeProgram("A", []byte("first"), 1)
	first[0] = codec.TagDeleted
	second := c.EncodeProgram("B", []byte("second"), 2)

	tp := Parse(buildTape(first, second))
	require.False(t, tp.Truncated())
	require.Len(t, tp.Items, 4)

	deleted := tp.Items[0]
	assert.Equal(t, ItemDeleted, deleted.Kind)
	assert.Equal(t, "A", deleted.Name)
	assert.Equal(t, int32(5), deleted.Length)
	assert.Equal(t, int64(len(first)), deleted.Size)
	assert.False(t, deleted.IsFiller())

	// the scan resumes exactly at the next entry
	assert.Equal(t, ItemHeader, tp.Items[1].Kind)
	assert.Equal(t, "B", tp.Items[1].Name)
	assert.Equal(t, int64(len(first)), tp.Items[1].Offset)
	assert.Equal(t, "second", string(tp.Items[2].Data))
}

func TestParse_Filler(t *testing.T) {
	c := testCodec()
	filler, err := c.EncodeFiller(40)
	require.NoError(t, err)

	tp := Parse(buildTape(filler, c.EncodeProgram("B", []byte("b"), 1)))
	require.False(t, tp.Truncated())
	require.Len(t, tp.Items, 4)
	assert.True(t, tp.Items[0].IsFiller())
	assert.Equal(t, int64(40), tp.Items[0].Size)
	assert.Equal(t, int64(40), tp.Items[1].Offset)
}

func TestParse_UnrecognizedTag(t *testing.T) {
	c := testCodec()
	first := c.EncodeProgram("A", []byte("a"), 1)
	data := buildTape(first, []byte{0x7F}, c.EncodeProgram("B", []byte("b"), 2))

	tp := Parse(data)
	require.True(t, tp.Truncated())
	assert.Len(t, tp.Items, 3)

	var fe *FormatError
	require.ErrorAs(t, tp.Err, &fe)
	assert.Equal(t, int64(len(first)), fe.Offset)
	assert.Equal(t, byte(0x7F), fe.Tag)
	assert.Equal(t, int64(len(first)), tp.End())
}

func TestParse_LengthsPastEnd(t *testing.T) {
	c := testCodec()

	t.Run("payload past end", func(t *testing.T) {
		entry := c.EncodeProgram("A", []byte("abcdef"), 1)
		tp := Parse(entry[:len(entry)-4])
		assert.True(t, tp.Truncated())
		assert.Empty(t, tp.Items)
	})

	t.Run("short header", func(t *testing.T) {
		entry := c.EncodeProgram("A", []byte("abcdef"), 1)
		tp := Parse(entry[:10])
		assert.True(t, tp.Truncated())
	})

	t.Run("deleted region past end", func(t *testing.T) {
		entry := c.EncodeProgram("A", []byte("abcdef"), 1)
		entry[0] = codec.TagDeleted
		tp := Parse(entry[:len(entry)-1])
		assert.True(t, tp.Truncated())
		assert.Empty(t, tp.Items)
	})
}

func TestScanner_Scan(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tape_scanner_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	t.Run("absent file is an empty tape", func(t *testing.T) {
		tp, err := NewScanner(filepath.Join(tmpDir, "missing.bin")).Scan()
		require.NoError(t, err)
		assert.Empty(t, tp.Items)
		assert.False(t, tp.Truncated())
	})

	t.Run("reads file contents", func(t *testing.T) {
		path := filepath.Join(tmpDir, "tape.bin")
		require.NoError(t, os.WriteFile(path, testCodec().EncodeProgram("A", []byte("a"), 1), 0644))

		tp, err := NewScanner(path).Scan()
		require.NoError(t, err)
		assert.Len(t, tp.Items, 3)
	})

	t.Run("truncated scan is not an error", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.bin")
		require.NoError(t, os.WriteFile(path, []byte{0x42}, 0644))

		tp, err := NewScanner(path).Scan()
		require.NoError(t, err)
		assert.True(t, tp.Truncated())
	})

	t.Run("directory is an I/O error", func(t *testing.T) {
		_, err := NewScanner(tmpDir).Scan()
		assert.Error(t, err)
	})
}

func TestItemKind_String(t *testing.T) {
	assert.Equal(t, "header", ItemHeader.String())
	assert.Equal(t, "payload", ItemPayload.String())
	assert.Equal(t, "end", ItemEnd.String())
	assert.Equal(t, "deleted", ItemDeleted.String())
	assert.Equal(t, "ItemKind(9)", ItemKind(9).String())
}
