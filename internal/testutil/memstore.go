package testutil

import (
	"context"
	"sync"

	"github.com/HerbHall/netsampler/internal/store"
	"github.com/HerbHall/netsampler/pkg/models"
)

// Compile-time interface check.
var _ store.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore is a thread-safe in-memory snapshot store that records every
// save for later inspection. SaveErr, when set, is returned by Save without
// storing anything.
type MemoryStore struct {
	mu      sync.Mutex
	sample  models.Sample
	present bool
	saves   []models.Sample
	loads   int
	SaveErr error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed stores s as if a previous run had saved it.
func (m *MemoryStore) Seed(s models.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sample = clone(s)
	m.present = true
}

func (m *MemoryStore) Load(_ context.Context) (models.Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if !m.present {
		return nil, false
	}
	return clone(m.sample), true
}

func (m *MemoryStore) Save(_ context.Context, s models.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.sample = clone(s)
	m.present = true
	m.saves = append(m.saves, clone(s))
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sample = nil
	m.present = false
	return nil
}

// Saves returns a copy of every sample passed to Save, oldest first.
func (m *MemoryStore) Saves() []models.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Sample, len(m.saves))
	copy(out, m.saves)
	return out
}

// Current returns the stored sample and whether one is present.
func (m *MemoryStore) Current() (models.Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.sample), m.present
}

// Loads returns how many times Load was called.
func (m *MemoryStore) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

func clone(s models.Sample) models.Sample {
	if s == nil {
		return nil
	}
	out := make(models.Sample, len(s))
	copy(out, s)
	return out
}
