package api

import (
	"net/http"

	"github.com/ashureev/biogen/internal/session"
	"github.com/go-chi/chi/v5"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	sessions *session.Manager
	endpoint string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(sessions *session.Manager, generatorEndpoint string) *HealthHandler {
	return &HealthHandler{sessions: sessions, endpoint: generatorEndpoint}
}

// Health returns the health status of the API. The generator backend is not
// probed; its URL is reported for diagnostics.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"sessions":  h.sessions.Len(),
		"generator": h.endpoint,
	})
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
