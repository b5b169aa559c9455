package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/container"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

func TestHealthHandler_Check(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return assert.AnError }

	tests := []struct {
		name       string
		checks     map[string]container.HealthChecker
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:       "all dependencies up",
			checks:     map[string]container.HealthChecker{"database": healthy, "redis": healthy},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
			wantChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:       "redis down",
			checks:     map[string]container.HealthChecker{"database": healthy, "redis": failing},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
			wantChecks: map[string]string{"database": "ok", "redis": "unhealthy"},
		},
		{
			name:       "no dependencies",
			checks:     nil,
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantState, resp.Status)
			assert.Equal(t, serviceName, resp.Service)
			if tt.wantChecks != nil {
				assert.Equal(t, tt.wantChecks, resp.Checks)
			}
		})
	}
}
