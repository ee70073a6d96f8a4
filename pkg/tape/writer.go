package tape

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// Writer applies mutations to the tape file. Every call opens the file,
// writes and closes it again; nothing is cached between calls.
type Writer struct {
	config WriterConfig
}

// NewWriter creates a new tape writer with the given configuration
func NewWriter(config WriterConfig) *Writer {
	return &Writer{config: config}
}

// Append writes data at the end of the tape and returns the offset it was written at
func (w *Writer) Append(data []byte) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(w.config.FilePath), 0750); err != nil {
		return 0, errors.Wrap(err, "create tape directory")
	}

	file, err := os.OpenFile(w.config.FilePath, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, errors.Wrap(err, "open tape for append")
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		file.Close()
		return 0, errors.Wrap(err, "seek to end of tape")
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return 0, errors.Wrap(err, "append to tape")
	}

	return offset, w.finish(file)
}

// WriteAt overwrites len(data) bytes in place starting at offset
func (w *Writer) WriteAt(offset int64, data []byte) error {
	file, err := os.OpenFile(w.config.FilePath, os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrap(err, "open tape for write")
	}

	if _, err := file.WriteAt(data, offset); err != nil {
		file.Close()
		return errors.Wrapf(err, "write %d bytes at offset %d", len(data), offset)
	}

	return w.finish(file)
}

// SetTag flips the tag byte at offset from expect to tag. It returns false,
// leaving the file untouched, when the byte on disk is not expect.
func (w *Writer) SetTag(offset int64, expect, tag byte) (bool, error) {
	file, err := os.OpenFile(w.config.FilePath, os.O_RDWR, 0)
	if err != nil {
		return false, errors.Wrap(err, "open tape for tag update")
	}

	current := make([]byte, 1)
	if _, err := file.ReadAt(current, offset); err != nil {
		file.Close()
		return false, errors.Wrapf(err, "read tag at offset %d", offset)
	}
	if current[0] != expect {
		return false, file.Close()
	}

	if _, err := file.WriteAt([]byte{tag}, offset); err != nil {
		file.Close()
		return false, errors.Wrapf(err, "write tag at offset %d", offset)
	}

	return true, w.finish(file)
}

// Splice inserts data at offset and shifts every following byte to the right.
// The new tape is written to a temporary file and renamed over the old one.
func (w *Writer) Splice(offset int64, data []byte) error {
	current, err := os.ReadFile(w.config.FilePath)
	if err != nil {
		return errors.Wrap(err, "read tape for splice")
	}
	if offset < 0 || offset > int64(len(current)) {
		return errors.Errorf("splice offset %d outside tape of %d bytes", offset, len(current))
	}

	spliced := make([]byte, 0, len(current)+len(data))
	spliced = append(spliced, current[:offset]...)
	spliced = append(spliced, data...)
	spliced = append(spliced, current[offset:]...)

	return writeFileAtomic(w.config.FilePath, spliced, 0644)
}

func (w *Writer) finish(file *os.File) error {
	if w.config.Fsync {
		if err := file.Sync(); err != nil {
			file.Close()
			return errors.Wrap(err, "fsync tape")
		}
	}
	return file.Close()
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, creating the parent directory when it is missing.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return errors.Wrapf(err, "create directory for %s", path)
	}
	if err := renameio.WriteFile(path, data, perm); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
