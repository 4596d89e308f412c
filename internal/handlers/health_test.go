package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthzHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthzHandler()(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestReadyzHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name         string
		checks       map[string]HealthCheck
		expectedCode int
		expected     HealthResponse
	}{
		{
			name:         "all healthy",
			checks:       map[string]HealthCheck{"postgres": ok, "redis": ok},
			expectedCode: http.StatusOK,
			expected:     HealthResponse{Status: "ok", Checks: map[string]string{"postgres": "ok", "redis": "ok"}},
		},
		{
			name:         "database down",
			checks:       map[string]HealthCheck{"postgres": fail, "redis": ok},
			expectedCode: http.StatusServiceUnavailable,
			expected: HealthResponse{Status: "unavailable", Checks: map[string]string{
				"postgres": "error: connection refused",
				"redis":    "ok",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			NewReadyzHandler(tt.checks)(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp)
		})
	}
}
