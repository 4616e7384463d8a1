package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func newLimiter(max int, keyFn func(c *fiber.Ctx) string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   time.Minute,
		KeyGenerator: keyFn,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too_many_requests"})
		},
	})
}

// RateLimitAuth limits signup and login to 10 requests per minute per IP.
func RateLimitAuth() fiber.Handler {
	return newLimiter(10, func(c *fiber.Ctx) string {
		return c.IP()
	})
}

// RateLimitWrite limits mutating endpoints to 60 requests per minute, keyed
// by user when authenticated, else by IP.
func RateLimitWrite() fiber.Handler {
	return newLimiter(60, func(c *fiber.Ctx) string {
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			return uid
		}
		return c.IP()
	})
}
