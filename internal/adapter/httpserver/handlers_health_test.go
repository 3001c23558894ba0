package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/platform/config"
)

func newHealthTestServer(checks []HealthCheck) *Server {
	cfg := &config.Config{
		Port:              "8080",
		AuthRatePerSecond: 1000,
		AuthBurst:         1000,
	}
	return NewServer(cfg, &fakeAuthorizer{}, checks)
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleLiveness(t *testing.T) {
	s := newHealthTestServer(nil)

	rec := get(s, "/health/live")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), "uptime")
}

func TestHandleReadiness_AllChecksPass(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		{Name: "redis", Check: func(ctx context.Context) error { return nil }},
	}
	s := newHealthTestServer(checks)

	rec := get(s, "/health/ready")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)
}

func TestHandleReadiness_FailingCheck(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
		{Name: "redis", Check: func(ctx context.Context) error { return errors.New("connection refused") }},
	}
	s := newHealthTestServer(checks)

	rec := get(s, "/health/ready")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed_check":"redis"`)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestHandleStartup_UsesSameChecks(t *testing.T) {
	checks := []HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return errors.New("not ready") }},
	}
	s := newHealthTestServer(checks)

	rec := get(s, "/health/startup")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleVersion(t *testing.T) {
	s := newHealthTestServer(nil)

	rec := get(s, "/version")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
	assert.Contains(t, rec.Body.String(), `"service":"broadcast-gateway"`)
}
