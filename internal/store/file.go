package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/HerbHall/netsampler/internal/failure"
	"github.com/HerbHall/netsampler/pkg/models"
)

// Compile-time interface guard.
var _ SnapshotStore = (*FileStore)(nil)

// FileStore keeps the snapshot as a single JSON file.
type FileStore struct {
	dir    string
	name   string
	logger *zap.Logger
}

// NewFileStore returns a store writing <dir>/<name>. Empty arguments fall
// back to DefaultDir and DefaultFileName. Nothing is touched on disk until
// the first Save.
func NewFileStore(dir, name string, logger *zap.Logger) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	if name == "" {
		name = DefaultFileName
	}
	return &FileStore{dir: dir, name: name, logger: logger}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.name)
}

// Dir returns the snapshot directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Load(_ context.Context) (models.Sample, bool) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("snapshot unreadable, treating as absent",
				zap.String("path", s.Path()),
				zap.Error(err),
			)
		}
		return nil, false
	}

	sample, ok := decode(b)
	if !ok {
		s.logger.Debug("snapshot empty or undecodable", zap.String("path", s.Path()))
	}
	return sample, ok
}

// Save writes the sample to a temporary file in the snapshot directory and
// renames it over the previous snapshot.
func (s *FileStore) Save(_ context.Context, sample models.Sample) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return failure.New(failure.StorageCreate, "create snapshot directory", err)
	}

	b, err := encode(sample)
	if err != nil {
		return failure.New(failure.StorageWrite, "write snapshot", err)
	}

	tmp, err := os.CreateTemp(s.dir, s.name+".*.tmp")
	if err != nil {
		return failure.New(failure.StorageWrite, "write snapshot", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return failure.New(failure.StorageWrite, "write snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return failure.New(failure.StorageWrite, "write snapshot", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return failure.New(failure.StorageWrite, "write snapshot", fmt.Errorf("rename %s: %w", tmpName, err))
	}

	s.logger.Debug("snapshot saved",
		zap.String("path", s.Path()),
		zap.Int("records", len(sample)),
	)
	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return failure.New(failure.StorageWrite, "remove snapshot", err)
	}
	return nil
}
