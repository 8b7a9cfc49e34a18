package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/callpilot/internal/store"
	"github.com/ashureev/callpilot/internal/workflow"
	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repo      store.Repository
	registry  *workflow.Registry
	aiEnabled bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo store.Repository, registry *workflow.Registry, aiEnabled bool) *HealthHandler {
	return &HealthHandler{repo: repo, registry: registry, aiEnabled: aiEnabled}
}

// Check pings dependencies and reports their state.
func (h *HealthHandler) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok", "ai": "disabled"}
	if h.aiEnabled {
		checks["ai"] = "ok"
	}
	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		checks["database"] = "unreachable"
		return checks, false
	}
	checks["database"] = "ok"
	return checks, true
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks, healthy := h.Check(r.Context())
	status := map[string]any{
		"status":     "healthy",
		"checks":     checks,
		"workspaces": h.registry.Len(),
	}
	statusCode := http.StatusOK
	if !healthy {
		status["status"] = "degraded"
		statusCode = http.StatusServiceUnavailable
	}
	JSON(w, statusCode, status)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
