package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/comandero-software/comandero/internal/ws"
)

// Notifier adapts the webhook service to the event bus Publisher
// contract, so order broadcasts also reach restaurant integrations.
// Dispatch runs off the request goroutine; a slow endpoint never delays
// the mutation response.
type Notifier struct {
	service *Service
	logger  *slog.Logger
}

func NewNotifier(service *Service, logger *slog.Logger) *Notifier {
	return &Notifier{service: service, logger: logger}
}

func (n *Notifier) Publish(room string, eventType ws.EventType, data interface{}) {
	restaurantID, ok := ws.ParseRestaurantRoom(room)
	if !ok {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := n.service.Dispatch(ctx, restaurantID, string(eventType), data); err != nil {
			n.logger.Error("webhook dispatch failed",
				"restaurant_id", restaurantID,
				"event", eventType,
				"error", err,
			)
		}
	}()
}
