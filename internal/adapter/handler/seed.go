package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type SeedHandler struct {
	Seeder Seeder
}

// SeedMinimal loads the fixed development dataset. The token check happens in
// middleware.SeedAuth before this runs.
func (h *SeedHandler) SeedMinimal(c *fiber.Ctx) error {
	if err := h.Seeder.SeedMinimal(c.Context()); err != nil {
		return fail(c, err)
	}
	slog.Info("minimal dataset seeded")
	return c.JSON(fiber.Map{"seeded": true})
}
