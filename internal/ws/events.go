package ws

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventOrderCreated EventType = "order:create"
	EventOrderUpdated EventType = "order:update"
)

// Event is what the bus delivers: an opaque payload tagged with a type.
// The bus never interprets Data.
type Event struct {
	Room      string      `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// RestaurantRoom returns the broadcast room for a restaurant. The
// "restaurant:{id}" scheme is the contract between publishers and
// dashboard subscribers; both sides must use this helper.
func RestaurantRoom(restaurantID uuid.UUID) string {
	return "restaurant:" + restaurantID.String()
}

// ParseRestaurantRoom extracts the restaurant id from a room name
// produced by RestaurantRoom.
func ParseRestaurantRoom(room string) (uuid.UUID, bool) {
	const prefix = "restaurant:"
	if !strings.HasPrefix(room, prefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(room, prefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
