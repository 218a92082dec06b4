package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nmacharia/ledgerd/internal/core/domain"
)

// SeedAuth guards the seed endpoint with the shared import token from the
// X-Seed-Token header. An empty configured token rejects everything.
func SeedAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplied := c.Get("X-Seed-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": domain.ErrUnauthorized.Error()})
		}
		return c.Next()
	}
}
