//go:build !windows

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

type flockLock struct {
	f *os.File
}

// Acquire takes a non-blocking exclusive flock on dir. held is false, with a
// nil error, when another process already owns the lock. The directory is
// created if needed.
func Acquire(dir string) (lock Lock, held bool, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return noopLock{}, false, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, lockFileName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return noopLock{}, false, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return noopLock{}, false, nil
		}
		return noopLock{}, false, fmt.Errorf("flock: %w", err)
	}
	return &flockLock{f: f}, true, nil
}

func (l *flockLock) Release() error {
	if l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		f.Close()
		return fmt.Errorf("unlock: %w", err)
	}
	return f.Close()
}
