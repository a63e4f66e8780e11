package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/gtm-insight/internal/domain"
	_ "modernc.org/sqlite"
)

const (
	writeMaxRetries = 3
	writeBaseDelay  = 50 * time.Millisecond
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		mode TEXT NOT NULL DEFAULT 'home',
		authenticated INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT session_id, mode, authenticated, created_at, updated_at
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, id)

	var sess domain.Session
	var mode string
	var createdAt, updatedAt int64

	err := row.Scan(&sess.ID, &mode, &sess.Authenticated, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	parsed, err := domain.ParseMode(mode)
	if err != nil {
		slog.Warn("Stored session has unknown mode, resetting to home", "session_id", id, "mode", mode)
		parsed = domain.ModeHome
	}
	sess.Mode = parsed
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.UpdatedAt = time.Unix(updatedAt, 0)

	return &sess, nil
}

// UpsertSession creates or updates a session record.
func (s *SQLiteStore) UpsertSession(ctx context.Context, sess *domain.Session) error {
	query := `
	INSERT INTO sessions (session_id, mode, authenticated, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		mode = excluded.mode,
		authenticated = excluded.authenticated,
		updated_at = excluded.updated_at`

	_, err := s.execWithRetry(ctx, sess.ID, query,
		sess.ID, string(sess.Mode), sess.Authenticated,
		sess.CreatedAt.Unix(), sess.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", sess.ID, err)
	}
	return nil
}

// UpdateMode sets the mode of an existing session.
func (s *SQLiteStore) UpdateMode(ctx context.Context, id string, mode domain.Mode, at time.Time) error {
	n, err := s.execWithRetry(ctx, id,
		`UPDATE sessions SET mode = ?, updated_at = ? WHERE session_id = ?`,
		string(mode), at.Unix(), id)
	if err != nil {
		return fmt.Errorf("update session mode %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update session mode %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// SetAuthenticated records the gate outcome of an existing session.
func (s *SQLiteStore) SetAuthenticated(ctx context.Context, id string, authenticated bool, at time.Time) error {
	n, err := s.execWithRetry(ctx, id,
		`UPDATE sessions SET authenticated = ?, updated_at = ? WHERE session_id = ?`,
		authenticated, at.Unix(), id)
	if err != nil {
		return fmt.Errorf("set session authentication %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("set session authentication %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// TouchSession refreshes updated_at so the TTL worker treats the session as active.
func (s *SQLiteStore) TouchSession(ctx context.Context, id string, at time.Time) error {
	n, err := s.execWithRetry(ctx, id,
		`UPDATE sessions SET updated_at = ? WHERE session_id = ?`,
		at.Unix(), id)
	if err != nil {
		return fmt.Errorf("touch session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("touch session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// execWithRetry runs a write, retrying with exponential backoff while the
// database is busy or locked. It returns the number of affected rows.
func (s *SQLiteStore) execWithRetry(ctx context.Context, sessionID, query string, args ...any) (int64, error) {
	var err error
	for i := 0; i < writeMaxRetries; i++ {
		var result sql.Result
		result, err = s.db.ExecContext(ctx, query, args...)
		if err == nil {
			return result.RowsAffected()
		}
		if !IsConflictError(err) || i == writeMaxRetries-1 {
			break
		}
		delay := writeBaseDelay * time.Duration(1<<i) // 50ms, 100ms
		slog.Debug("Session write hit a locked database, retrying",
			"session_id", sessionID,
			"attempt", i+1,
			"delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return 0, err
}

// DeleteSession removes a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes sessions idle for longer than ttl.
func (s *SQLiteStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
