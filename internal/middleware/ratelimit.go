package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/leads-enricher/internal/config"
)

// lookupPaths are the endpoints that trigger outbound scraping or crawling
// and therefore share a token bucket.
var lookupPaths = map[string]struct{}{
	"/lookup": {},
	"/enrich": {},
}

// LookupRateLimiter applies a token bucket limiter to the endpoints that fan
// out to external services. Other routes pass through untouched.
func LookupRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	limiter := rate.NewLimiter(rate.Every(perRequest), cfg.Requests)
	var mu sync.Mutex

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, limited := lookupPaths[c.Path()]; !limited {
				return next(c)
			}

			mu.Lock()
			allowed := limiter.Allow()
			mu.Unlock()

			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "lookup rate limit exceeded"})
			}

			return next(c)
		}
	}
}
