package api

import (
	"net/http"

	"github.com/plannerai/planner/internal/log"
)

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	logger log.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger log.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
}

// health reports liveness. It depends on nothing: a process that can answer
// is healthy.
func (h *HealthHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"}, h.logger)
}
