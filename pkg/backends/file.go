package backends

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// FileBackend appends to a file on the local filesystem. The file is opened
// once in append mode and kept open; every Append syncs to disk so a line
// survives even if the process dies right after the call.
//
// An advisory flock is taken around each append so that several processes
// debugging into the same file emit whole lines. Serialization of appends
// within one process is the caller's job.
type FileBackend struct {
	file *os.File
	lock *flock.Flock
	path string
}

// NewFileBackend opens (creating if absent) the file at path in append mode.
func NewFileBackend(path string) (*FileBackend, error) {
	cleanPath := filepath.Clean(path)

	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // #nosec G302 - debug logs need to be readable
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	return &FileBackend{
		file: file,
		lock: flock.New(cleanPath),
		path: cleanPath,
	}, nil
}

// Append writes p to the file and syncs.
func (fb *FileBackend) Append(p []byte) error {
	if err := fb.lock.Lock(); err != nil {
		return errors.Wrap(err, "acquire lock")
	}
	defer func() {
		_ = fb.lock.Unlock() // Best effort; the fd is still usable
	}()

	if _, err := fb.file.Write(p); err != nil {
		return errors.Wrap(err, "write")
	}

	// O_APPEND writes are unbuffered in userspace, so sync is all that is
	// needed for crash durability.
	if err := fb.file.Sync(); err != nil {
		return errors.Wrap(err, "sync")
	}
	return nil
}

// Close closes the file.
func (fb *FileBackend) Close() error {
	return fb.file.Close()
}

// Path returns the cleaned file path.
func (fb *FileBackend) Path() string {
	return fb.path
}
