//go:build !windows

package store

import (
	"path/filepath"
	"testing"
)

func TestAcquire_Contention(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snap")

	first, held, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !held {
		t.Fatal("first Acquire should hold the lock")
	}

	second, held, err := Acquire(dir)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if held {
		t.Error("second Acquire should report contention")
	}
	if err := second.Release(); err != nil {
		t.Errorf("Release of unheld lock: %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Errorf("double Release: %v", err)
	}

	third, held, err := Acquire(dir)
	if err != nil || !held {
		t.Fatalf("Acquire after release = %v, %v", held, err)
	}
	third.Release()
}
