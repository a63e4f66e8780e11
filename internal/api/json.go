package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/gtm-insight/internal/agent"
	"github.com/ashureev/gtm-insight/internal/domain"
	"github.com/ashureev/gtm-insight/internal/gate"
	"github.com/ashureev/gtm-insight/internal/identity"
	"github.com/ashureev/gtm-insight/internal/portal"
)

// StateResponse describes the session and portal status.
type StateResponse struct {
	Mode          domain.Mode `json:"mode"`
	Authenticated bool        `json:"authenticated"`
	GateEnabled   bool        `json:"gate_enabled"`
	Connected     bool        `json:"connected"`
	Model         string      `json:"model"`
}

// GenerateResponse is the JSON form of a report.
type GenerateResponse struct {
	Mode    domain.Mode    `json:"mode"`
	OK      bool           `json:"ok"`
	Text    string         `json:"text,omitempty"`
	Failure *agent.Failure `json:"failure,omitempty"`
	Warning string         `json:"warning,omitempty"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type navigateRequest struct {
	Mode string `json:"mode"`
}

type generateRequest struct {
	Text string `json:"text"`
}

func (h *Handler) state(s domain.Session) StateResponse {
	return StateResponse{
		Mode:          s.Mode,
		Authenticated: s.Authenticated,
		GateEnabled:   h.portal.Gate().Enabled(),
		Connected:     h.portal.Connected(),
		Model:         h.portal.ModelID(),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// APIState handles GET /api/state.
func (h *Handler) APIState(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, h.state(s))
}

// APILogin handles POST /api/login.
func (h *Handler) APILogin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if h.portal.Allowed(s) {
		JSON(w, http.StatusOK, h.state(s))
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next, err := h.portal.Login(s, req.Password)
	if errors.Is(err, gate.ErrAccessDenied) {
		Error(w, http.StatusUnauthorized, gate.ErrAccessDenied.Error())
		return
	}
	next, err = identity.SaveAuthenticated(r.Context(), h.repo, next)
	if err != nil {
		slog.Error("Failed to save login", "session_id", s.ID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	JSON(w, http.StatusOK, h.state(next))
}

// APINavigate handles POST /api/navigate.
func (h *Handler) APINavigate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req navigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target, err := domain.ParseMode(req.Mode)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	next := h.portal.Navigate(s, target)
	if next.Mode != s.Mode {
		next = h.saveMode(r, next)
	}
	JSON(w, http.StatusOK, h.state(next))
}

// APIGenerate handles POST /api/generate.
func (h *Handler) APIGenerate(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rep := h.portal.Generate(r.Context(), s, req.Text)
	slog.Info("API generate request",
		"session_id", s.ID,
		"mode", s.Mode,
		"ok", rep.OK(),
		"warning", rep.Warning,
	)

	resp := GenerateResponse{Mode: rep.Mode, OK: rep.OK(), Warning: rep.Warning}
	if rep.Result != nil {
		resp.Text = rep.Result.Text
		resp.Failure = rep.Result.Failure
	}
	JSON(w, generateStatus(rep), resp)
}

func generateStatus(rep portal.Report) int {
	switch {
	case rep.OK():
		return http.StatusOK
	case rep.Warning == portal.WarnEmptyInput:
		return http.StatusBadRequest
	case rep.Warning == portal.WarnNoPrompt:
		return http.StatusConflict
	case rep.Warning == portal.WarnNotConnected:
		return http.StatusServiceUnavailable
	case rep.Warning == portal.WarnAccessDenied:
		return http.StatusForbidden
	default:
		return http.StatusBadGateway
	}
}
