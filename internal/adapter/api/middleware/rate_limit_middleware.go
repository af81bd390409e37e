package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"ecotrack/internal/infrastructure/ratelimit"
	"ecotrack/pkg/errors"
	"ecotrack/pkg/logger"
)

// RateLimit throttles action per client IP.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			allowed, retryAfter := limiter.Allow(ip, action)
			if !allowed {
				logger.Warn("RATE LIMIT: blocked %s from %s (retry in %v)", action, ip, retryAfter)
				seconds := int(math.Ceil(retryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return errors.TooManyRequests("Too many requests, please try again later")
			}
			return next(c)
		}
	}
}
