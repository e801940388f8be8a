package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
)

const pingTimeout = 2 * time.Second

// Health reports whether the store is reachable.
type Health struct {
	checker model.HealthChecker
	logger  *logger.Logger
}

// NewHealth creates a new Health handler.
func NewHealth(checker model.HealthChecker, logger *logger.Logger) *Health {
	return &Health{checker: checker, logger: logger}
}

// Check handles GET /healthz.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.checker.Ping(ctx); err != nil {
		h.logger.Warn("Health handler: store ping failed",
			"error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
