package handler

import (
	"net/http"
	"time"
)

// HealthHandler handles liveness endpoints.
type HealthHandler struct {
	env string
}

func NewHealthHandler(env string) *HealthHandler { return &HealthHandler{env: env} }

func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "SupaPay API is running successfully!", map[string]interface{}{
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
		"version":     "1.0.0",
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, "SupaPay API is healthy", map[string]interface{}{
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.env,
	})
}
