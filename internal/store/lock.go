package store

// lockFileName sits next to the snapshot and is never removed.
const lockFileName = ".netsampler.lock"

// Lock is an advisory, process-wide lock on a snapshot directory.
type Lock interface {
	// Release drops the lock. It is safe to call more than once.
	Release() error
}

type noopLock struct{}

func (noopLock) Release() error { return nil }
