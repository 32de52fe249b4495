package api

import (
	"net/http"
	"time"

	"github.com/interviewkit/interview-assistant/internal/api/respond"
	"github.com/interviewkit/interview-assistant/internal/model"
)

// HealthHandler reports aggregate service health.
type HealthHandler struct {
	isHealthy func() bool
}

// NewHealthHandler wires the handler to the service health flag maintained
// by the background checkers.
func NewHealthHandler(isHealthy func() bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return false }
	}
	return &HealthHandler{isHealthy: isHealthy}
}

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"version":   model.AppVersion,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
