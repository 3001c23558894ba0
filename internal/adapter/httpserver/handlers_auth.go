package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/domain"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/gateway"
	"github.com/disruption-hub/vendure-boilerplate-sub008/internal/metrics"
	apperrors "github.com/disruption-hub/vendure-boilerplate-sub008/internal/platform/errors"
)

func (s *Server) registerBroadcastingRoutes(rateLimiter echo.MiddlewareFunc) {
	s.echo.POST("/broadcasting/auth", s.handleChannelAuth, rateLimiter)
}

// handleChannelAuth signs a private/presence channel subscription request.
// Rejections are deliberately uniform 403s: the response must not reveal
// whether broadcasting is configured for the tenant.
func (s *Server) handleChannelAuth(c echo.Context) error {
	var req gateway.AuthRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthRequestsTotal.WithLabelValues("rejected").Inc()
		return apperrors.ValidationError("invalid request body")
	}

	if req.SocketID == "" || req.ChannelName == "" {
		metrics.AuthRequestsTotal.WithLabelValues("rejected").Inc()
		return apperrors.ValidationError("socketId and channelName are required")
	}

	if !domain.IsPrivateChannel(req.ChannelName) && !domain.IsPresenceChannel(req.ChannelName) {
		metrics.AuthRequestsTotal.WithLabelValues("rejected").Inc()
		return apperrors.ValidationError("only private and presence channels require authorization").
			WithContext("channel", req.ChannelName)
	}

	resp, err := s.authorizer.Authorize(c.Request().Context(), req)
	switch {
	case err == nil:
		// fallthrough to success
	case errors.Is(err, domain.ErrBroadcastingDisabled):
		metrics.AuthRequestsTotal.WithLabelValues("rejected").Inc()
		return apperrors.ForbiddenError("channel authorization denied")
	case errors.Is(err, domain.ErrMissingPresenceData):
		metrics.AuthRequestsTotal.WithLabelValues("rejected").Inc()
		return apperrors.ForbiddenError("channel authorization denied").
			WithContext("channel", req.ChannelName)
	default:
		metrics.AuthRequestsTotal.WithLabelValues("error").Inc()
		return apperrors.InternalError("failed to authorize channel subscription", err)
	}

	metrics.AuthRequestsTotal.WithLabelValues("granted").Inc()

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write auth response: %w", err)
	}
	return nil
}
