package ratelimit

import (
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// KeyFunc derives the client key of a request.
type KeyFunc func(c *fiber.Ctx) string

// Config configures the rate limit middleware.
type Config struct {
	Store *Store
	// KeyHeader, when set and present, identifies the client instead of its IP.
	KeyHeader string
	KeyFn     KeyFunc
}

// DefaultKeyFunc keys requests by keyHeader when present and by client IP otherwise.
func DefaultKeyFunc(keyHeader string) KeyFunc {
	return func(c *fiber.Ctx) string {
		if keyHeader != "" {
			if v := c.Get(keyHeader); v != "" {
				return "key:" + v
			}
		}
		return "ip:" + c.IP()
	}
}

// New returns a middleware answering 429 with Retry-After once a client exceeds its rate.
func New(cfg Config) fiber.Handler {
	if cfg.KeyFn == nil {
		cfg.KeyFn = DefaultKeyFunc(cfg.KeyHeader)
	}
	return func(c *fiber.Ctx) error {
		lim := cfg.Store.Get(cfg.KeyFn(c))
		res := lim.Reserve()
		if !res.OK() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too Many Requests"})
		}
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds(delay)))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too Many Requests"})
		}
		return c.Next()
	}
}

func retryAfterSeconds(d time.Duration) int {
	return int(math.Max(1, math.Ceil(d.Seconds())))
}
