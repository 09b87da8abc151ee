package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves /healthz with a database check.
type HealthHandler struct {
	db     Pinger
	logger zerolog.Logger
}

func NewHealthHandler(db Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Message: "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
