package tape

import (
	"github.com/pkg/errors"

	"github.com/ssargent/tapebox/pkg/codec"
)

// Allocator derives sequence numbers and reusable slots from a scanned tape
type Allocator struct {
	policy SlotPolicy
}

// NewAllocator creates an allocator applying the given slot policy
func NewAllocator(policy SlotPolicy) *Allocator {
	return &Allocator{policy: policy}
}

// NextLocation returns 1 + the number of header items on t
func (a *Allocator) NextLocation(t *Tape) int32 {
	return nextLocation(t)
}

// FindReusableSlot returns the index of the first tombstone on t that can
// hold requiredLength bytes under the allocator's policy.
func (a *Allocator) FindReusableSlot(t *Tape, requiredLength int64) (int, bool) {
	for i := range t.Items {
		it := &t.Items[i]
		if it.Kind != ItemDeleted || it.IsFiller() {
			continue
		}
		if slotFits(it, requiredLength, a.policy) {
			return i, true
		}
	}
	return 0, false
}

// StartOffsetOf translates a logical item index into a byte offset
func (a *Allocator) StartOffsetOf(t *Tape, index int) (int64, error) {
	switch {
	case index < 0:
		return 0, errors.Errorf("invalid item index %d", index)
	case index < len(t.Items):
		return t.Items[index].Offset, nil
	case index == len(t.Items) && !t.Truncated():
		return t.End(), nil
	case t.Truncated():
		return 0, errors.Wrapf(t.Err, "item %d is beyond the parsed tape", index)
	default:
		return 0, errors.Errorf("item index %d out of range (%d items)", index, len(t.Items))
	}
}

func nextLocation(t *Tape) int32 {
	var count int32
	for i := range t.Items {
		if t.Items[i].Kind == ItemHeader {
			count++
		}
	}
	return count + 1
}

func slotFits(it *Item, requiredLength int64, policy SlotPolicy) bool {
	switch policy {
	case PolicySplice:
		// compares the stored payload length against a full entry size,
		// as tapes written by earlier versions expect
		return int64(it.Length) >= requiredLength
	default:
		rem := it.Size - requiredLength
		return rem == 0 || rem >= codec.MinFillerSize
	}
}
