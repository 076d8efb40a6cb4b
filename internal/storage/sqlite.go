package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/hunt-engine/pkg/state"
	"github.com/jwebster45206/hunt-engine/pkg/storage"
)

const progressSchema = `
CREATE TABLE IF NOT EXISTS progress (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLiteStorage implements the Storage interface with a single-file
// SQLite database for session progress and the filesystem for hunt
// definitions. It is the durable option for installations without a
// Redis to point at.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
	huntDir
}

// Ensure SQLiteStorage implements Storage interface
var _ storage.Storage = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens (creating if needed) the database file and
// ensures the schema exists.
func NewSQLiteStorage(path string, dataDir string, logger *slog.Logger) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Single connection keeps writes serialized; WAL readers don't need more.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, progressSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create progress schema: %w", err)
	}

	return &SQLiteStorage{
		db:      db,
		logger:  logger,
		huntDir: newHuntDir(dataDir, logger),
	}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close sqlite database", "error", err)
		return err
	}
	s.logger.Info("SQLite database closed")
	return nil
}

// Progress operations (SQLite-backed)

func (s *SQLiteStorage) SaveProgress(ctx context.Context, id uuid.UUID, p *state.Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		s.logger.Error("Failed to marshal progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id.String(), string(data), p.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.logger.Error("Failed to save progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) LoadProgress(ctx context.Context, id uuid.UUID) (*state.Progress, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM progress WHERE id = ?`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Return nil for not found
	}
	if err != nil {
		s.logger.Error("Failed to load progress", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	var p state.Progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		// Malformed records are treated as absent so a corrupt write
		// cannot brick a session id.
		s.logger.Warn("Discarding malformed progress record", "uuid", id, "error", err)
		return nil, nil
	}

	return &p, nil
}

func (s *SQLiteStorage) DeleteProgress(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM progress WHERE id = ?`, id.String()); err != nil {
		s.logger.Error("Failed to delete progress", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}
