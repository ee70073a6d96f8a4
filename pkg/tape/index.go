package tape

// IndexEntry points at an item of a scanned tape
type IndexEntry struct {
	Item   int   // position in Tape.Items
	Offset int64 // byte offset of the item
}

// NameIndex maps program names to their first occurrence on a scanned tape.
// It is rebuilt from every scan and never persisted.
type NameIndex struct {
	active map[string]IndexEntry // first active header per name
	named  map[string]IndexEntry // first header or tombstone per name
}

// BuildNameIndex indexes the items of t in tape order
func BuildNameIndex(t *Tape) *NameIndex {
	idx := &NameIndex{
		active: make(map[string]IndexEntry),
		named:  make(map[string]IndexEntry),
	}

	for i := range t.Items {
		it := &t.Items[i]
		switch {
		case it.Kind == ItemHeader:
			idx.putFirst(idx.active, it.Name, i, it.Offset)
			idx.putFirst(idx.named, it.Name, i, it.Offset)
		case it.Kind == ItemDeleted && !it.IsFiller():
			idx.putFirst(idx.named, it.Name, i, it.Offset)
		}
	}

	return idx
}

// Active returns the first active header with the given name
func (idx *NameIndex) Active(name string) (IndexEntry, bool) {
	entry, exists := idx.active[name]
	return entry, exists
}

// FirstNamed returns the first header or tombstone that carries the given name
func (idx *NameIndex) FirstNamed(name string) (IndexEntry, bool) {
	entry, exists := idx.named[name]
	return entry, exists
}

func (idx *NameIndex) putFirst(m map[string]IndexEntry, name string, item int, offset int64) {
	if _, exists := m[name]; exists {
		return
	}
	m[name] = IndexEntry{Item: item, Offset: offset}
}
