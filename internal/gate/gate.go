// Package gate implements the shared-password access gate.
package gate

import (
	"crypto/subtle"
	"errors"

	"github.com/ashureev/gtm-insight/internal/domain"
)

// ErrAccessDenied is the only failure the gate reports.
var ErrAccessDenied = errors.New("access denied")

// Gate compares login attempts against a single configured secret.
// A Gate with an empty secret is disabled and lets every session through.
type Gate struct {
	secret []byte
}

// New creates a gate for secret. An empty secret disables the gate.
func New(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// Enabled reports whether a password is required.
func (g *Gate) Enabled() bool {
	return g != nil && len(g.secret) > 0
}

// Authenticate returns s marked as authenticated when candidate equals the
// secret. On mismatch s is returned unchanged together with false.
func (g *Gate) Authenticate(s domain.Session, candidate string) (domain.Session, bool) {
	if !g.Enabled() || candidate == "" {
		return s, false
	}
	if subtle.ConstantTimeCompare([]byte(candidate), g.secret) != 1 {
		return s, false
	}
	s.Authenticated = true
	return s, true
}

// Allowed reports whether s may use the portal.
func (g *Gate) Allowed(s domain.Session) bool {
	return !g.Enabled() || s.Authenticated
}
