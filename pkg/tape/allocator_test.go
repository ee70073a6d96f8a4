package tape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tapebox/pkg/codec"
)

func TestAllocator_NextLocation(t *testing.T) {
	a := NewAllocator(PolicyOverwrite)

	t.Run("empty tape", func(t *testing.T) {
		assert.Equal(t, int32(1), a.NextLocation(&Tape{}))
	})

	t.Run("counts active headers only", func(t *testing.T) {
		c := testCodec()
		deleted := c.EncodeProgram("B", []byte("b"), 2)
		deleted[0] = codec.TagDeleted
		tp := Parse(buildTape(
			c.EncodeProgram("A", []byte("a"), 1),
			deleted,
			c.EncodeProgram("C", []byte("c"), 2),
		))

		assert.Equal(t, int32(3), a.NextLocation(tp))
	})
}

func TestAllocator_FindReusableSlot(t *testing.T) {
	c := testCodec()
	small := c.EncodeProgram("S", []byte("0123456789"), 1) // span 33
	small[0] = codec.TagDeleted
	large := c.EncodeProgram("L", make([]byte, 100), 2) // span 123
	large[0] = codec.TagDeleted
	live := c.EncodeProgram("A", []byte("a"), 3)
	tp := Parse(buildTape(live, small, large))
	require.False(t, tp.Truncated())

	tests := []struct {
		name     string
		policy   SlotPolicy
		required int64
		offset   int64
		found    bool
	}{
		{"overwrite exact fit", PolicyOverwrite, 33, int64(len(live)), true},
		{"overwrite remainder too small for filler", PolicyOverwrite, 30, int64(len(live) + len(small)), true},
		{"overwrite remainder takes filler", PolicyOverwrite, 11, int64(len(live)), true},
		{"overwrite nothing large enough", PolicyOverwrite, 124, 0, false},
		{"splice compares stored length", PolicySplice, 10, int64(len(live)), true},
		{"splice skips short stored length", PolicySplice, 33, int64(len(live) + len(small)), true},
		{"splice nothing large enough", PolicySplice, 101, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, found := NewAllocator(tt.policy).FindReusableSlot(tp, tt.required)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, ItemDeleted, tp.Items[i].Kind)
				assert.Equal(t, tt.offset, tp.Items[i].Offset)
			}
		})
	}
}

func TestAllocator_FindReusableSlotSkipsFillers(t *testing.T) {
	filler, err := testCodec().EncodeFiller(200)
	require.NoError(t, err)

	_, found := NewAllocator(PolicyOverwrite).FindReusableSlot(Parse(filler), 50)
	assert.False(t, found)
}

func TestAllocator_StartOffsetOf(t *testing.T) {
	c := testCodec()
	first := c.EncodeProgram("A", []byte("abc"), 1)
	a := NewAllocator(PolicyOverwrite)

	t.Run("complete tape", func(t *testing.T) {
		tp := Parse(buildTape(first, c.EncodeProgram("B", []byte("b"), 2)))

		offset, err := a.StartOffsetOf(tp, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), offset)

		offset, err = a.StartOffsetOf(tp, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(codec.HeaderSize+1), offset)

		offset, err = a.StartOffsetOf(tp, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(len(first)), offset)

		offset, err = a.StartOffsetOf(tp, 6)
		require.NoError(t, err)
		assert.Equal(t, int64(len(first)+24), offset)

		_, err = a.StartOffsetOf(tp, 7)
		assert.Error(t, err)

		_, err = a.StartOffsetOf(tp, -1)
		assert.Error(t, err)
	})

	t.Run("index beyond truncation", func(t *testing.T) {
		tp := Parse(buildTape(first, []byte{0xEE}, c.EncodeProgram("B", []byte("b"), 2)))

		offset, err := a.StartOffsetOf(tp, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(len(first)-1), offset)

		_, err = a.StartOffsetOf(tp, 3)
		require.Error(t, err)
		var fe *FormatError
		assert.ErrorAs(t, err, &fe)
	})
}
