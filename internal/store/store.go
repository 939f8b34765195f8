// Package store keeps an SQLite index of logging sessions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"inputlogger/internal/core/inputlog"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Session is one row of the index.
type Session struct {
	ID        int64
	Name      string
	Boss      string
	Mode      string
	Output    string
	StartedAt time.Time
	EndedAt   time.Time
	Lines     int
}

// Finished reports whether the session was stopped cleanly.
func (s Session) Finished() bool {
	return !s.EndedAt.IsZero()
}

func (s Session) Duration() time.Duration {
	if !s.Finished() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Store wraps SQLite access for the session index.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			boss TEXT NOT NULL,
			mode TEXT NOT NULL,
			output TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL DEFAULT '',
			lines INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginSession inserts an open session row and returns its id.
func (s *Store) BeginSession(ctx context.Context, info inputlog.SessionInfo, mode string, output string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (name, boss, mode, output, started_at) VALUES (?, ?, ?, ?, ?)`,
		info.Name,
		info.Boss,
		mode,
		output,
		info.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	return res.LastInsertId()
}

// EndSession records the end time and line count of a session.
func (s *Store) EndSession(ctx context.Context, id int64, endedAt time.Time, lines int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, lines = ? WHERE id = ?`,
		endedAt.Format(time.RFC3339Nano),
		lines,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish session %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish session %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ListSessions returns the most recent sessions first. A non-positive limit
// returns all of them.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, boss, mode, output, started_at, ended_at, lines
		 FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetSession returns one session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, boss, mode, output, started_at, ended_at, lines
		 FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %d not found", id)
	}
	return session, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		session   Session
		startedAt string
		endedAt   string
	)
	if err := row.Scan(&session.ID, &session.Name, &session.Boss, &session.Mode, &session.Output, &startedAt, &endedAt, &session.Lines); err != nil {
		return Session{}, err
	}
	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Session{}, fmt.Errorf("parse started_at: %w", err)
	}
	session.StartedAt = started
	if endedAt != "" {
		ended, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return Session{}, fmt.Errorf("parse ended_at: %w", err)
		}
		session.EndedAt = ended
	}
	return session, nil
}
