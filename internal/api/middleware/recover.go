package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Recover turns handler panics into a 500 with the shared error envelope
// instead of killing the connection.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("method", c.Method()),
					slog.String("path", c.Path()),
				)
				_ = envelope(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
			}
		}()
		return c.Next()
	}
}
