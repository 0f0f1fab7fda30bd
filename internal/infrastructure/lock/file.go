// Package lock serialises mutating runs across processes.
package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"NewsDesk/internal/ports"
)

// ErrBusy is returned when another run holds the lock.
var ErrBusy = errors.New("another run holds the lock")

// File is an advisory lock on a local file.
type File struct {
	path string
}

var _ ports.Locker = (*File)(nil)

// NewFile returns a lock backed by the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Acquire takes the lock without waiting.
func (f *File) Acquire(ctx context.Context) (func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	fl := flock.New(f.path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", f.path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, f.path)
	}
	return fl.Unlock, nil
}
