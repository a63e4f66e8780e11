// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/gtm-insight/internal/domain"
)

// ErrSessionNotFound is returned by column updates when the session row is gone.
var ErrSessionNotFound = errors.New("session not found")

// Repository defines the interface for persisting portal sessions.
type Repository interface {
	// GetSession retrieves a session by ID. It returns nil, nil when none exists.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// UpsertSession creates or updates a session record.
	UpsertSession(ctx context.Context, s *domain.Session) error

	// UpdateMode sets only the mode column, leaving authentication untouched.
	UpdateMode(ctx context.Context, id string, mode domain.Mode, at time.Time) error

	// SetAuthenticated sets only the authenticated column, leaving the mode untouched.
	SetAuthenticated(ctx context.Context, id string, authenticated bool, at time.Time) error

	// TouchSession marks the session as active at the given time.
	TouchSession(ctx context.Context, id string, at time.Time) error

	// DeleteSession removes a session.
	DeleteSession(ctx context.Context, id string) error

	// CleanupExpiredSessions removes sessions not updated within ttl.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
