// Package api provides HTTP handlers for the insight portal.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/gtm-insight/internal/middleware"
	"github.com/ashureev/gtm-insight/internal/portal"
	"github.com/ashureev/gtm-insight/internal/store"
	"github.com/ashureev/gtm-insight/web"
	"github.com/go-chi/chi/v5"
)

// maxRequestBodySize limits form and JSON bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler serves the portal pages and its JSON API.
type Handler struct {
	repo   store.Repository
	portal *portal.Portal
	pages  *web.Renderer
}

// NewHandler creates a new Handler with its dependencies.
func NewHandler(repo store.Repository, p *portal.Portal, pages *web.Renderer) *Handler {
	return &Handler{
		repo:   repo,
		portal: p,
		pages:  pages,
	}
}

// RegisterRoutes registers page and API routes. Everything except login
// sits behind the access gate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Post("/api/login", h.APILogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAccess(h.portal.Gate()))

		r.Get("/", h.Index)
		r.Post("/navigate/{mode}", h.Navigate)
		r.Post("/generate", h.Generate)

		r.Get("/api/state", h.APIState)
		r.Post("/api/navigate", h.APINavigate)
		r.Post("/api/generate", h.APIGenerate)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
