// Package lock implements ports.ManifestLocker with an advisory file lock.
package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.trai.ch/darling/internal/core/domain"
	"go.trai.ch/darling/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultRetryDelay = 100 * time.Millisecond

// FileLocker guards the manifest with a lock file next to it.
type FileLocker struct {
	path       string
	retryDelay time.Duration
	logger     ports.Logger
}

// NewFileLocker creates a FileLocker using the lock file at path.
func NewFileLocker(path string, logger ports.Logger) *FileLocker {
	return &FileLocker{path: path, retryDelay: defaultRetryDelay, logger: logger}
}

// Path returns the lock file location.
func (l *FileLocker) Path() string {
	return l.path
}

// Lock blocks until the lock is acquired or ctx is done.
func (l *FileLocker) Lock(ctx context.Context) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", l.path)
	}

	fl := flock.New(l.path, flock.SetPermissions(domain.FilePerm))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", l.path)
	}

	if !locked {
		l.logger.Info("waiting for another darling process to release the manifest")

		locked, err = fl.TryLockContext(ctx, l.retryDelay)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return nil, zerr.With(errors.Join(domain.ErrManifestLocked, err), "path", l.path)
		}
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "path", l.path)
		}
		if !locked {
			return nil, zerr.With(zerr.Wrap(domain.ErrLockFailed, "lock not acquired"), "path", l.path)
		}
	}

	return fl.Unlock, nil
}
