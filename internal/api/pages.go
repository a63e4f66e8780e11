package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/gtm-insight/internal/domain"
	"github.com/ashureev/gtm-insight/internal/gate"
	"github.com/ashureev/gtm-insight/internal/identity"
	"github.com/ashureev/gtm-insight/internal/portal"
	"github.com/ashureev/gtm-insight/internal/view"
	"github.com/go-chi/chi/v5"
)

// loginSaveFailed is shown when the gate accepted the password but the
// session could not record it.
const loginSaveFailed = "Could not save your sign-in. Please try again."

// page is the data every template receives.
type page struct {
	Title     string
	Subtitle  string
	Connected bool
	Model     string
	Input     string
	Error     string
	Report    *portal.Report

	// Entries are navigate actions shown as cards on a screen without a
	// generate action. Nav holds navigate actions shown in the sidebar.
	Entries     []view.Action
	Nav         []view.Action
	Generate    *view.Action
	TakesInput  bool
	CanGenerate bool
}

func (h *Handler) viewPage(s domain.Session) page {
	v := view.Current(s.Mode)
	p := page{
		Title:      v.Title,
		Subtitle:   v.Subtitle,
		Connected:  h.portal.Connected(),
		Model:      h.portal.ModelID(),
		TakesInput: v.TakesInput,
	}
	for _, a := range v.Actions {
		switch {
		case a.Kind == view.ActionGenerate:
			p.Generate = &a
		case v.Generates:
			p.Nav = append(p.Nav, a)
		default:
			p.Entries = append(p.Entries, a)
		}
	}
	p.CanGenerate = v.Generates && p.Generate != nil && p.Connected
	return p
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	s, ok := identity.SessionFromContext(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
	}
	return s, ok
}

// saveMode persists a navigation, logging instead of failing the
// interaction: the next request simply shows the previous screen.
func (h *Handler) saveMode(r *http.Request, s domain.Session) domain.Session {
	saved, err := identity.SaveMode(r.Context(), h.repo, s)
	if err != nil {
		slog.Error("Failed to save session mode", "session_id", s.ID, "mode", s.Mode, "error", err)
	}
	return saved
}

// Index renders the view for the session's current mode.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.pages.Render(w, http.StatusOK, view.Current(s.Mode).Template, h.viewPage(s))
}

// Navigate switches the session to the mode named in the URL.
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	target, err := domain.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if next := h.portal.Navigate(s, target); next.Mode != s.Mode {
		h.saveMode(r, next)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Generate runs the current screen's action and renders the outcome in place.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	text := r.PostFormValue("text")

	rep := h.portal.Generate(r.Context(), s, text)
	slog.Info("Generate request",
		"session_id", s.ID,
		"mode", s.Mode,
		"ok", rep.OK(),
		"warning", rep.Warning,
	)

	p := h.viewPage(s)
	p.Input = text
	p.Report = &rep
	h.pages.Render(w, http.StatusOK, view.Current(s.Mode).Template, p)
}

// LoginPage renders the password form. Sessions that already pass the gate
// are sent home.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.portal.Allowed(s) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.pages.Render(w, http.StatusOK, "login.html", h.loginPage(""))
}

// Login checks the submitted password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.portal.Allowed(s) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	next, err := h.portal.Login(s, r.PostFormValue("password"))
	if errors.Is(err, gate.ErrAccessDenied) {
		h.pages.Render(w, http.StatusUnauthorized, "login.html", h.loginPage(portal.WarnAccessDenied))
		return
	}
	if _, err := identity.SaveAuthenticated(r.Context(), h.repo, next); err != nil {
		slog.Error("Failed to save login", "session_id", s.ID, "error", err)
		h.pages.Render(w, http.StatusInternalServerError, "login.html", h.loginPage(loginSaveFailed))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) loginPage(errMsg string) page {
	return page{
		Title:     "Sign in",
		Subtitle:  "Enter the team password to continue.",
		Connected: h.portal.Connected(),
		Error:     errMsg,
	}
}
