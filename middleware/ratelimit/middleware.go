// Package ratelimit provides a Redis-backed sliding window rate limiter
// exposed as Fiber middleware. It protects the credential endpoints
// (login, register) against brute forcing.
package ratelimit

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Config holds rate limiter configuration.
type Config struct {
	// Limit is the maximum number of requests allowed per window.
	Limit int

	// Window is the time window for the rate limit.
	Window time.Duration

	// KeyPrefix is the prefix for Redis keys.
	KeyPrefix string
}

// DefaultConfig returns a config with sensible defaults for auth endpoints.
func DefaultConfig() Config {
	return Config{
		Limit:     10,
		Window:    time.Minute,
		KeyPrefix: "ratelimit:",
	}
}

// New creates Fiber middleware that limits requests per client IP and
// route. On Redis failure the request is allowed through; losing rate
// limiting is preferable to rejecting logins.
func New(client *redis.Client, config Config) fiber.Handler {
	limiter := NewLimiter(client, config.KeyPrefix)

	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + c.Path()

		result, err := limiter.Allow(c.UserContext(), key, config.Limit, config.Window)
		if err != nil {
			log.Printf("[ratelimit] Check failed, allowing request: %v", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests, try again later",
			})
		}

		return c.Next()
	}
}
