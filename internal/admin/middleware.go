package admin

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireAPIKey guards operator endpoints that run without a user session,
// like the rate-sync trigger. An empty configured key hard-fails every
// request rather than leaving the route open.
func RequireAPIKey(key string) fiber.Handler {
	key = strings.TrimSpace(key)
	if key == "" {
		return func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusInternalServerError, "admin API key not configured")
		}
	}

	return func(c *fiber.Ctx) error {
		got := strings.TrimSpace(c.Get("X-Admin-Key"))
		if got == "" || got != key {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid admin key")
		}
		return c.Next()
	}
}
