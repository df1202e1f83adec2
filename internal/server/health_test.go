package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollaboratorHealthChecker_Healthy(t *testing.T) {
	check := CollaboratorHealthChecker(func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		return nil
	}, time.Second)

	result := check()
	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Message)
	assert.NotEmpty(t, result.Latency)
}

func TestCollaboratorHealthChecker_Unhealthy(t *testing.T) {
	check := CollaboratorHealthChecker(func(context.Context) error {
		return assert.AnError
	}, time.Second)

	result := check()
	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Equal(t, assert.AnError.Error(), result.Message)
}

func TestHealthEndpointReportsCollaborator(t *testing.T) {
	router := newTestRouter()
	RegisterHealthRoutes(router, "adscout", "test", map[string]HealthChecker{
		"database": DatabaseHealthChecker(func() error { return nil }),
		"browserbot": CollaboratorHealthChecker(func(context.Context) error {
			return assert.AnError
		}, time.Second),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"browserbot"`)
	assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
}
