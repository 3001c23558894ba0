// Package httpserver exposes the gateway's HTTP surface: the channel
// authorization endpoint, health probes, and Prometheus metrics.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/gateway"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/platform/config"
)

type channelAuthorizer interface {
	Authorize(ctx context.Context, req gateway.AuthRequest) (*gateway.AuthResponse, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	authorizer   channelAuthorizer
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, authorizer channelAuthorizer, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		authorizer:   authorizer,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
