package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestLogger tags every request with a generated id, echoes it in the
// X-Request-Id response header and logs method, path, status and duration.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := uuid.NewString()
		c.Set("X-Request-Id", id)

		start := time.Now()
		err := c.Next()

		slog.Info("request",
			"id", id,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start).String(),
		)
		return err
	}
}
