package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS command_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	direction TEXT NOT NULL,
	command TEXT NOT NULL,
	ok INTEGER NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_command_history_created_at
	ON command_history(created_at);
`

// Entry is one relayed command.
type Entry struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Direction string    `json:"direction"`
	Command   string    `json:"command"`
	OK        bool      `json:"ok"`
	Detail    string    `json:"detail,omitempty"`
}

// Store manages command history persistence backed by SQLite.
type Store struct {
	db         *sql.DB
	path       string
	maxEntries int
}

// Open initializes or connects to the history database at path.
// maxEntries bounds retained rows; older rows are pruned on insert.
func Open(path string, maxEntries int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Store{db: db, path: path, maxEntries: maxEntries}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record appends one command outcome and prunes rows beyond the
// retention bound.
func (s *Store) Record(ctx context.Context, direction, command string, ok bool, detail string) error {
	if s == nil || s.db == nil {
		return nil
	}
	okValue := 0
	if ok {
		okValue = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO command_history (created_at, direction, command, ok, detail) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), direction, command, okValue, detail)
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	if s.maxEntries > 0 {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM command_history WHERE id NOT IN (
				SELECT id FROM command_history ORDER BY id DESC LIMIT ?)`,
			s.maxEntries)
		if err != nil {
			return fmt.Errorf("prune command history: %w", err)
		}
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 means all
// retained entries.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := `SELECT id, created_at, direction, command, ok, detail
		FROM command_history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list command history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			createdAt string
			okValue   int
		)
		if err := rows.Scan(&entry.ID, &createdAt, &entry.Direction, &entry.Command, &okValue, &entry.Detail); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = ts
		}
		entry.OK = okValue != 0
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of retained entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM command_history`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count history rows: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
