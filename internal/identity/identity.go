// Package identity attaches a per-browser portal session to every request.
package identity

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ashureev/gtm-insight/internal/domain"
	"github.com/ashureev/gtm-insight/internal/store"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie holding the session ID.
const SessionCookieName = "gtm_session"

// TouchInterval is how stale updated_at may get before a request refreshes it.
const TouchInterval = time.Minute

type contextKey int

const sessionKey contextKey = iota

// SessionFromContext extracts the session from the request context.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(domain.Session)
	return s, ok
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

func isValidSessionID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.Version() == 4
}

// setSessionCookie writes a browser-session cookie: no MaxAge, so the
// browser drops it when it closes.
func setSessionCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// loadOrCreate returns the stored session for the request cookie, creating
// a fresh home-screen session when the cookie is missing, malformed or the
// stored record has expired.
func loadOrCreate(ctx context.Context, w http.ResponseWriter, r *http.Request, repo store.Repository, isDev bool) (domain.Session, error) {
	if c, err := r.Cookie(SessionCookieName); err == nil && isValidSessionID(c.Value) {
		existing, err := repo.GetSession(ctx, c.Value)
		if err != nil {
			return domain.Session{}, err
		}
		if existing != nil {
			return touch(ctx, repo, *existing), nil
		}
	}

	s := domain.NewSession(uuid.NewString(), time.Now())
	if err := repo.UpsertSession(ctx, &s); err != nil {
		return domain.Session{}, err
	}
	setSessionCookie(w, s.ID, isDev)
	slog.Debug("Session created", "session_id", s.ID, "ip", IPFromRequest(r))
	return s, nil
}

// touch marks s active so the TTL worker only removes idle sessions.
// A failed touch is logged; the request still proceeds.
func touch(ctx context.Context, repo store.Repository, s domain.Session) domain.Session {
	now := time.Now()
	if s.Idle(now) < TouchInterval {
		return s
	}
	if err := repo.TouchSession(ctx, s.ID, now); err != nil {
		slog.Warn("Failed to touch session", "session_id", s.ID, "error", err)
		return s
	}
	s.UpdatedAt = now
	return s
}

// Middleware loads or creates the portal session and stores it in the request context.
func Middleware(repo store.Repository, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := loadOrCreate(r.Context(), w, r, repo, isDev)
			if err != nil {
				slog.Error("Failed to establish session", "error", err)
				http.Error(w, `{"error":"failed to establish session"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// SaveMode persists the mode of s without touching its authentication state.
func SaveMode(ctx context.Context, repo store.Repository, s domain.Session) (domain.Session, error) {
	s.UpdatedAt = time.Now()
	if err := repo.UpdateMode(ctx, s.ID, s.Mode, s.UpdatedAt); err != nil {
		return s, err
	}
	return s, nil
}

// SaveAuthenticated persists the gate outcome of s without touching its mode.
func SaveAuthenticated(ctx context.Context, repo store.Repository, s domain.Session) (domain.Session, error) {
	s.UpdatedAt = time.Now()
	if err := repo.SetAuthenticated(ctx, s.ID, s.Authenticated, s.UpdatedAt); err != nil {
		return s, err
	}
	return s, nil
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
