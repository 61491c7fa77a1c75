package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/JaimeStill/agent-registry/pkg/database"
	"github.com/JaimeStill/agent-registry/pkg/lifecycle"
	migratedb "github.com/golang-migrate/migrate/v4/database"

	_ "modernc.org/sqlite"
)

// dialect holds the per-database statements for the documents table.
type dialect struct {
	name     string
	retrieve string
	upsert   string
	insert   string
	swap     string
	remove   string
	exists   string
	driver   func(*sql.DB) (migratedb.Driver, error)
}

var sqliteDialect = dialect{
	name:     "sqlite",
	retrieve: `SELECT data FROM documents WHERE key = ?`,
	upsert: `INSERT INTO documents (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
	insert: `INSERT INTO documents (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO NOTHING`,
	swap:   `UPDATE documents SET data = ?, updated_at = ? WHERE key = ? AND data = ?`,
	remove: `DELETE FROM documents WHERE key = ?`,
	exists: `SELECT EXISTS (SELECT 1 FROM documents WHERE key = ?)`,
	driver: sqliteDriver,
}

var postgresDialect = dialect{
	name:     "postgres",
	retrieve: `SELECT data FROM documents WHERE key = $1`,
	upsert: `INSERT INTO documents (key, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
	insert: `INSERT INTO documents (key, data, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING`,
	swap:   `UPDATE documents SET data = $1, updated_at = $2 WHERE key = $3 AND data = $4`,
	remove: `DELETE FROM documents WHERE key = $1`,
	exists: `SELECT EXISTS (SELECT 1 FROM documents WHERE key = $1)`,
	driver: postgresDriver,
}

// sqlStore keeps each document as one row of the documents table.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	maxSize int64
	logger  *slog.Logger
}

func newSQLite(cfg *Config, logger *slog.Logger) (System, error) {
	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("create base_path: %w", err)
	}

	path := filepath.Join(cfg.BasePath, SQLiteFile)
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	return &sqlStore{
		db:      db,
		dialect: sqliteDialect,
		maxSize: cfg.MaxDocumentBytes(),
		logger:  logger,
	}, nil
}

func newPostgres(ctx context.Context, cfg *Config, logger *slog.Logger) (System, error) {
	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	return &sqlStore{
		db:      db,
		dialect: postgresDialect,
		maxSize: cfg.MaxDocumentBytes(),
		logger:  logger,
	}, nil
}

// Start applies schema migrations and closes the database on shutdown.
func (s *sqlStore) Start(lc *lifecycle.Coordinator) error {
	version, err := migrateUp(s.db, s.dialect)
	if err != nil {
		return err
	}
	s.logger.Info("storage schema ready", "version", version)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.db.Close(); err != nil {
			s.logger.Error("storage close error", "error", err)
			return
		}
		s.logger.Info("storage closed")
	})

	return nil
}

func (s *sqlStore) Store(ctx context.Context, key string, data []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), s.maxSize)
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, data, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Swap issues a single conditional statement, so the database row lock
// makes the compare and the write atomic.
func (s *sqlStore) Swap(ctx context.Context, key string, expected, data []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), s.maxSize)
	}

	now := time.Now().UnixNano()

	var res sql.Result
	if expected == nil {
		res, err = s.db.ExecContext(ctx, s.dialect.insert, key, data, now)
	} else {
		res, err = s.db.ExecContext(ctx, s.dialect.swap, data, now, key, expected)
	}
	if err != nil {
		return fmt.Errorf("swap document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("swap document: %w", err)
	}
	if n == 0 {
		return ErrStale
	}
	return nil
}

func (s *sqlStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	var data []byte
	if err := s.db.QueryRowContext(ctx, s.dialect.retrieve, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}

	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), s.maxSize)
	}
	return data, nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.remove, key); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *sqlStore) Validate(ctx context.Context, key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, s.dialect.exists, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return exists, nil
}
