// Package middleware provides HTTP middleware for the insight portal.
package middleware

import (
	"net/http"
	"strings"

	"github.com/ashureev/gtm-insight/internal/gate"
	"github.com/ashureev/gtm-insight/internal/identity"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// RequireAccess blocks sessions that have not passed the access gate.
// Page requests are redirected to the login form; API requests get a 403.
// It must run after identity.Middleware.
func RequireAccess(g *gate.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := identity.SessionFromContext(r.Context())
			if ok && g.Allowed(s) {
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"` + gate.ErrAccessDenied.Error() + `"}` + "\n"))
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
		})
	}
}
