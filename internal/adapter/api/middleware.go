package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"productcopy-core/internal/domain/repository"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs each request with zap and tags it with a request id.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDHeader, id)

		err := c.Next()

		log.Info("request",
			zap.String("request_id", id),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

// RateLimit throttles /api/ paths per client IP before any ledger or
// generation work. A limiter error lets the request through.
func RateLimit(limiter repository.RateLimiter, window time.Duration, log *zap.Logger) fiber.Handler {
	retryAfter := strconvSeconds(window)
	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}

		ip := c.IP()
		if ip == "" {
			ip = "unknown"
		}
		allowed, err := limiter.Allow(c.UserContext(), ip, time.Now())
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("ip", ip), zap.Error(err))
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, retryAfter)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Te veel verzoeken. Probeer het over een minuut opnieuw.",
			})
		}
		return c.Next()
	}
}
