package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/HerbHall/netsampler/internal/failure"
	"github.com/HerbHall/netsampler/pkg/models"
)

// Compile-time interface guard.
var _ SnapshotStore = (*SQLiteStore)(nil)

// Migration is one versioned schema change.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// SQLiteStore keeps the snapshot as a single row in a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex // Serialize migrations
	once   sync.Once  // Ensure _migrations table created once
}

// OpenSQLite opens (or creates) the database at <dir>/<name> and applies the
// snapshot schema. Use ":memory:" as name for a throwaway database.
func OpenSQLite(ctx context.Context, dir, name string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if name == "" {
		name = DefaultDBName
	}

	path := name
	if name != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, failure.New(failure.StorageCreate, "create snapshot directory", err)
		}
		path = filepath.Join(dir, name)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, failure.New(failure.StorageCreate, "open sqlite", fmt.Errorf("%q: %w", path, err))
	}

	// SQLite performs best with a single write connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, failure.New(failure.StorageCreate, "open sqlite", fmt.Errorf("ping %q: %w", path, err))
	}

	// modernc.org/sqlite requires SQL statements, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, failure.New(failure.StorageCreate, "open sqlite", fmt.Errorf("exec %q: %w", p, err))
		}
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.Migrate(ctx, snapshotMigrations); err != nil {
		db.Close()
		return nil, failure.New(failure.StorageCreate, "migrate snapshot schema", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for direct queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Sample, bool) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshot WHERE id = 1`,
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("snapshot unreadable, treating as absent", zap.Error(err))
		}
		return nil, false
	}
	return decode(payload)
}

func (s *SQLiteStore) Save(ctx context.Context, sample models.Sample) error {
	b, err := encode(sample)
	if err != nil {
		return failure.New(failure.StorageWrite, "write snapshot", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshot (id, payload, records, saved_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			records = excluded.records,
			saved_at = excluded.saved_at`,
		b, len(sample), time.Now().UTC(),
	)
	if err != nil {
		return failure.New(failure.StorageWrite, "write snapshot", err)
	}
	s.logger.Debug("snapshot saved", zap.Int("records", len(sample)))
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshot`); err != nil {
		return failure.New(failure.StorageWrite, "remove snapshot", err)
	}
	return nil
}

// Tx executes fn within a database transaction. The transaction is
// committed if fn returns nil, rolled back otherwise.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

// Migrate runs pending migrations. Already-applied versions (tracked in the
// _migrations table) are skipped. Migrations must be in ascending order.
func (s *SQLiteStore) Migrate(ctx context.Context, migrations []Migration) error {
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range migrations {
		applied, err := s.isMigrationApplied(ctx, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
	}

	return nil
}

func (s *SQLiteStore) ensureMigrationsTable(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		_, err = s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS _migrations (
				version     INTEGER PRIMARY KEY,
				description TEXT    NOT NULL,
				applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`)
	})
	return err
}

func (s *SQLiteStore) isMigrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM _migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %d: %w", version, err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) applyMigration(ctx context.Context, m Migration) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if err := m.Up(tx); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO _migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		)
		return err
	})
}

var snapshotMigrations = []Migration{
	{
		Version:     1,
		Description: "create snapshot table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE snapshot (
					id       INTEGER PRIMARY KEY CHECK (id = 1),
					payload  BLOB     NOT NULL,
					records  INTEGER  NOT NULL,
					saved_at DATETIME NOT NULL
				)`)
			return err
		},
	},
}
