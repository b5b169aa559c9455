package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/container"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

const (
	serviceName    = "church-calendar-line-bot"
	serviceVersion = "1.0.0"

	healthCheckTimeout = 3 * time.Second
)

// HealthHandler handles health check requests
type HealthHandler struct {
	checks map[string]container.HealthChecker
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checks map[string]container.HealthChecker, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: log.Named("health"),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health. Any failing dependency turns the response
// into 503 degraded.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   serviceVersion,
		Service:   serviceName,
		Checks:    make(map[string]string, len(names)),
	}
	status := http.StatusOK

	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.WithError(err).WithField("check", name).Warn("Health check failed")
			response.Checks[name] = "unhealthy"
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	respondJSON(w, status, response)
}
