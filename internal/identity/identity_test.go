package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/gtm-insight/internal/domain"
	"github.com/ashureev/gtm-insight/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) store.Repository {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func captureSession(seen *domain.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "no session", http.StatusInternalServerError)
			return
		}
		*seen = s
		w.WriteHeader(http.StatusNoContent)
	})
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", SessionCookieName)
	return nil
}

func TestMiddlewareCreatesHomeSession(t *testing.T) {
	repo := newRepo(t)
	var seen domain.Session
	h := Middleware(repo, true)(captureSession(&seen))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, domain.ModeHome, seen.Mode)
	assert.False(t, seen.Authenticated)

	c := sessionCookie(t, rec)
	assert.Equal(t, seen.ID, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Zero(t, c.MaxAge, "session cookie must not outlive the browser session")
}

func TestMiddlewareReusesStoredSession(t *testing.T) {
	repo := newRepo(t)
	var seen domain.Session
	h := Middleware(repo, true)(captureSession(&seen))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	c := sessionCookie(t, rec)
	first := seen

	first.Mode = domain.ModeAuto
	_, err := SaveMode(t.Context(), repo, first)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, first.ID, seen.ID)
	assert.Equal(t, domain.ModeAuto, seen.Mode)
	assert.Empty(t, rec.Result().Cookies(), "existing session must not be re-issued")
}

func TestMiddlewareReplacesUnknownCookie(t *testing.T) {
	repo := newRepo(t)
	var seen domain.Session
	h := Middleware(repo, true)(captureSession(&seen))

	for _, value := range []string{"not-a-uuid", "2b1c2a3e-8f1d-4c5e-9a7b-0c1d2e3f4a5b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: value})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.NotEqual(t, value, seen.ID)
		assert.Equal(t, domain.ModeHome, seen.Mode)
		assert.Equal(t, seen.ID, sessionCookie(t, rec).Value)
	}
}

func TestSecureCookieOutsideDevelopment(t *testing.T) {
	repo := newRepo(t)
	var seen domain.Session
	h := Middleware(repo, false)(captureSession(&seen))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, sessionCookie(t, rec).Secure)
}

func TestActiveSessionSurvivesSweep(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	var seen domain.Session
	h := Middleware(repo, true)(captureSession(&seen))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	c := sessionCookie(t, rec)

	stale := seen
	stale.Mode = domain.ModeManual
	stale.Authenticated = true
	stale.UpdatedAt = time.Now().Add(-13 * time.Hour)
	require.NoError(t, repo.UpsertSession(ctx, &stale))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Less(t, seen.Idle(time.Now()), TouchInterval)

	deleted, err := repo.CleanupExpiredSessions(ctx, 12*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	got, err := repo.GetSession(ctx, stale.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ModeManual, got.Mode)
	assert.True(t, got.Authenticated)
}

func TestRecentSessionIsNotRewritten(t *testing.T) {
	repo := newRepo(t)
	var seen domain.Session
	h := Middleware(repo, true)(captureSession(&seen))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	first := seen

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, rec))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, first.UpdatedAt.Unix(), seen.UpdatedAt.Unix())
}

func TestSaveModeKeepsAuthentication(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	s := domain.NewSession("7d8f4a2e-3c1b-4e5f-8a9b-0c1d2e3f4a5b", time.Now())
	require.NoError(t, repo.UpsertSession(ctx, &s))

	loggedIn := s
	loggedIn.Authenticated = true
	_, err := SaveAuthenticated(ctx, repo, loggedIn)
	require.NoError(t, err)

	navigated := s
	navigated.Mode = domain.ModeAuto
	_, err = SaveMode(ctx, repo, navigated)
	require.NoError(t, err)

	got, err := repo.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Authenticated)
	assert.Equal(t, domain.ModeAuto, got.Mode)
}
