package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Visitor entries outlive any legitimate auth burst; the store is
// per-instance, matching the per-IP scope of the limit.
const rateLimiterExpiry = 3 * time.Minute

// newRateLimiter gates the channel authorization endpoint per client IP.
// The deny body follows the gateway's error envelope so SDK callers can
// distinguish throttling from an authorization rejection.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "too many channel authorization attempts",
				"type":  "rate_limited",
			})
		},
	})
}
