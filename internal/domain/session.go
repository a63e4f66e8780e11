// Package domain contains core domain types for the insight portal.
package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrInvalidMode is returned when a string does not name a known view mode.
var ErrInvalidMode = errors.New("invalid mode")

// Mode is the screen a session is currently looking at.
type Mode string

const (
	// ModeHome is the landing screen with the two entry actions.
	ModeHome Mode = "home"
	// ModeAuto runs the canned supply-chain risk scan.
	ModeAuto Mode = "auto"
	// ModeManual analyses news text pasted by the user.
	ModeManual Mode = "manual"
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeHome, ModeAuto, ModeManual}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return slices.Contains(Modes(), m)
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Session is the per-browser state of the portal.
type Session struct {
	ID            string    `json:"id"`
	Mode          Mode      `json:"mode"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewSession returns a fresh session on the home screen, not yet authenticated.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:        id,
		Mode:      ModeHome,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Idle returns how long the session has been untouched.
func (s Session) Idle(now time.Time) time.Duration {
	d := now.Sub(s.UpdatedAt)
	if d < 0 {
		return 0
	}
	return d
}
