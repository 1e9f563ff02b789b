// Package store persists the most recent sample between sampler runs.
//
// Only one snapshot is kept. Runs are expected to be sequential: two
// processes sharing a location may interleave loads and saves. Lock reports
// such contention but does not prevent it.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HerbHall/netsampler/pkg/models"
)

// Default location of the snapshot under the system temp directory.
const (
	DefaultDirName  = "netsampler"
	DefaultFileName = ".osx_network.dat"
	DefaultDBName   = "netsampler.db"
)

// Backend names accepted in configuration.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// SnapshotStore reads and replaces the previous sample.
type SnapshotStore interface {
	// Load returns the stored sample. ok is false when nothing usable is
	// stored; absence is a normal state, not an error.
	Load(ctx context.Context) (sample models.Sample, ok bool)

	// Save replaces the stored sample, creating the location if needed.
	Save(ctx context.Context, sample models.Sample) error

	// Clear removes the stored sample. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}

// DefaultDir returns the snapshot directory used when none is configured.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), DefaultDirName)
}

// encode serializes a sample as the snapshot blob. A nil sample is written
// as an empty list so the blob always decodes.
func encode(s models.Sample) ([]byte, error) {
	if s == nil {
		s = models.Sample{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// decode parses a snapshot blob. An empty or whitespace-only blob is
// reported as absent.
func decode(b []byte) (models.Sample, bool) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, false
	}
	var s models.Sample
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, false
	}
	if s == nil {
		s = models.Sample{}
	}
	return s, true
}
