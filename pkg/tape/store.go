package tape

import (
	"math"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ssargent/tapebox/pkg/codec"
)

// Store is the tape orchestrator. Every operation re-scans the file and acts
// on the fresh view; no state survives between calls.
type Store struct {
	config    Config
	codec     *codec.RecordCodec
	scanner   *Scanner
	allocator *Allocator
	writer    *Writer
	mutex     sync.Mutex
}

// NewStore creates a store over the tape file named in config
func NewStore(config Config) (*Store, error) {
	if config.FilePath == "" {
		config.FilePath = DefaultTapeFile
	}

	policy, err := ParseSlotPolicy(string(config.Policy))
	if err != nil {
		return nil, err
	}
	config.Policy = policy

	return &Store{
		config:    config,
		codec:     codec.NewRecordCodec().WithClock(config.Clock),
		scanner:   NewScanner(config.FilePath),
		allocator: NewAllocator(policy),
		writer:    NewWriter(WriterConfig{FilePath: config.FilePath, Fsync: config.Fsync}),
	}, nil
}

// Path returns the tape file path
func (s *Store) Path() string {
	return s.config.FilePath
}

// Policy returns the slot reuse policy in effect
func (s *Store) Policy() SlotPolicy {
	return s.config.Policy
}

// SaveOrUpdate writes a program to the tape, reusing the first tombstoned
// slot that fits and appending otherwise. Names are not checked for uniqueness.
func (s *Store) SaveOrUpdate(name string, data []byte) error {
	if name == "" {
		return ErrEmptyName
	}
	if !utf8.ValidString(name) || !utf8.Valid(data) {
		return ErrInvalidEncoding
	}
	if len(name) > math.MaxInt32 || len(data) > math.MaxInt32 {
		return ErrProgramTooLarge
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.scanner.Scan()
	if err != nil {
		return err
	}

	if t.Truncated() {
		log.WithError(t.Err).WithField("name", name).Warn("refusing to save behind unrecognized data")
		return errors.Wrap(ErrTapeTruncated, t.Err.Error())
	}

	location := s.allocator.NextLocation(t)
	program := s.codec.EncodeProgram(name, data, location)

	i, ok := s.allocator.FindReusableSlot(t, int64(len(program)))
	if !ok {
		offset, err := s.writer.Append(program)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"name":     name,
			"location": location,
			"offset":   offset,
			"size":     len(program),
		}).Debug("appended program")
		return nil
	}

	start, err := s.allocator.StartOffsetOf(t, i)
	if err != nil {
		return err
	}

	slot := t.Items[i]
	switch s.config.Policy {
	case PolicySplice:
		if err := s.writer.Splice(start, program); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"name":   name,
			"offset": start,
			"size":   len(program),
		}).Info("spliced program into tombstoned slot")

	default:
		buf := program
		if rem := slot.Size - int64(len(program)); rem > 0 {
			filler, err := s.codec.EncodeFiller(rem)
			if err != nil {
				return err
			}
			buf = append(buf, filler...)
		}
		if err := s.writer.WriteAt(start, buf); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"name":   name,
			"offset": start,
			"size":   len(program),
			"slot":   slot.Size,
		}).Info("reused tombstoned slot")
	}

	return nil
}

// Load returns the payload of the first active program with the given name
func (s *Store) Load(name string) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.scanner.Scan()
	if err != nil {
		return nil, err
	}

	entry, ok := BuildNameIndex(t).Active(name)
	if !ok {
		return nil, ErrProgramNotFound
	}

	payload := t.Items[entry.Item+1].Data
	return append([]byte{}, payload...), nil
}

// Remove tombstones the first active program with the given name by
// flipping its tag byte. It returns false if no such program exists.
func (s *Store) Remove(name string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.scanner.Scan()
	if err != nil {
		return false, err
	}

	entry, ok := BuildNameIndex(t).Active(name)
	if !ok {
		return false, nil
	}

	removed, err := s.writer.SetTag(entry.Offset, codec.TagHeader, codec.TagDeleted)
	if err != nil {
		return false, err
	}
	if removed {
		log.WithFields(log.Fields{"name": name, "offset": entry.Offset}).Debug("program marked as deleted")
	}
	return removed, nil
}

// Recover restores the first entry carrying the given name if it is a
// tombstone. It returns false when that entry is active or no entry matches.
func (s *Store) Recover(name string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.scanner.Scan()
	if err != nil {
		return false, err
	}

	entry, ok := BuildNameIndex(t).FirstNamed(name)
	if !ok || t.Items[entry.Item].Kind != ItemDeleted {
		return false, nil
	}

	recovered, err := s.writer.SetTag(entry.Offset, codec.TagDeleted, codec.TagHeader)
	if err != nil {
		return false, err
	}
	if recovered {
		log.WithFields(log.Fields{"name": name, "offset": entry.Offset}).Debug("program recovered")
	}
	return recovered, nil
}

// List returns the active programs in tape order
func (s *Store) List() ([]ProgramInfo, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.scanner.Scan()
	if err != nil {
		return nil, err
	}

	programs := []ProgramInfo{}
	for _, it := range t.Items {
		if it.Kind != ItemHeader {
			continue
		}
		programs = append(programs, ProgramInfo{
			Name:      it.Name,
			Location:  it.Location,
			Timestamp: time.UnixMilli(it.Timestamp).UTC(),
			Length:    it.Length,
			Offset:    it.Offset,
		})
	}
	return programs, nil
}

// Stats returns statistics about the tape
func (s *Store) Stats() (*Stats, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.scanner.Scan()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		NextLocation: s.allocator.NextLocation(t),
		FileSize:     t.Size,
		ParsedBytes:  t.End(),
		Truncated:    t.Truncated(),
	}
	for i := range t.Items {
		switch it := &t.Items[i]; {
		case it.Kind == ItemHeader:
			stats.Programs++
		case it.IsFiller():
			stats.Fillers++
		case it.Kind == ItemDeleted:
			stats.Tombstones++
		}
	}
	return stats, nil
}

// DebugDump renders one line per scanned item
func (s *Store) DebugDump() (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.scanner.Scan()
	if err != nil {
		return "", err
	}
	return FormatDump(t), nil
}

// DumpToFile writes the debug dump to path, DefaultDumpFile when path is empty
func (s *Store) DumpToFile(path string) error {
	if path == "" {
		path = DefaultDumpFile
	}

	dump, err := s.DebugDump()
	if err != nil {
		return err
	}

	if err := writeFileAtomic(path, []byte(dump), 0644); err != nil {
		return errors.Wrapf(err, "write debug dump to %s", path)
	}
	return nil
}
