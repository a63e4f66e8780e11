package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/gtm-insight/internal/store"
	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repo      store.Repository
	connected bool
}

// NewHealthHandler creates a new health handler. connected reports whether
// a model API key is configured.
func NewHealthHandler(repo store.Repository, connected bool) *HealthHandler {
	return &HealthHandler{repo: repo, connected: connected}
}

// Health returns the health status of the portal and its dependencies.
// A missing API key is reported but does not make the portal unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	if h.connected {
		checks["model"] = "configured"
	} else {
		checks["model"] = "not_connected"
	}

	status := map[string]interface{}{
		"status": "healthy",
		"checks": checks,
	}
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
