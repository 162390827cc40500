package ws

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/comandero-software/comandero/internal/domain"
)

// Handler upgrades an already-authorized staff request and joins the
// connection to its restaurant's room. The authorization gate runs before
// the upgrade, so an unauthenticated socket never reaches this point.
func Handler(hub *Hub, logger *slog.Logger) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		principal, ok := c.Locals(domain.PrincipalKey).(domain.Principal)
		if !ok || !principal.IsStaff() {
			_ = c.Close()
			return
		}

		client := NewClient(c)
		hub.Join(client, RestaurantRoom(principal.RestaurantID))

		logger.Debug("kitchen display connected",
			"staff_id", principal.ID,
			"restaurant_id", principal.RestaurantID,
		)

		go client.WritePump()
		client.ReadPump(hub)
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
