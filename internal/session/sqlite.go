package session

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/buzzclient/internal/logging"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLite persists session entries in a single-table SQLite database.
type SQLite struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path string, logger logging.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("session path is required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure session dir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	// One connection keeps Clear atomic with respect to concurrent Sets.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "session"})
	componentLogger.Debug("opened sqlite session storage", logging.Field{Key: "path", Value: path})
	return &SQLite{db: db, logger: componentLogger}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_entries WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get session key %q: %w", key, err)
	}
	return v, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("set session key %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove session key %q: %w", key, err)
	}
	return nil
}

func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM session_entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list session keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan session key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLite) Clear(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_entries`)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Info("session cleared", logging.Field{Key: "entries", Value: n})
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
