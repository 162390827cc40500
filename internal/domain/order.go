package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order ticket.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusServed    OrderStatus = "SERVED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

var validStatuses = map[OrderStatus]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusPreparing: true,
	StatusReady:     true,
	StatusServed:    true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// validTransitions is the authoritative state machine definition.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusPreparing},
	StatusServed:    {StatusCompleted},
}

// IsValidStatus checks whether the status is one of the known order states.
func IsValidStatus(s OrderStatus) bool {
	return validStatuses[s]
}

// ValidTransitionsFrom returns the allowed next states for a status.
// Terminal states return nil.
func ValidTransitionsFrom(from OrderStatus) []OrderStatus {
	return validTransitions[from]
}

// CanTransition reports whether an order may move from one status to
// another. Marking the same status twice (double-tap on an expo station)
// is rejected here, not at the store.
func CanTransition(from, to OrderStatus) error {
	for _, next := range validTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

// OrderItem is a single line on an order ticket.
type OrderItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  int64     `json:"unit_price"` // cents
	Notes      string    `json:"notes,omitempty"`
}

// Order is an order ticket owned by a restaurant. Status mutations must be
// followed by a realtime publish of the post-mutation snapshot.
type Order struct {
	ID           uuid.UUID   `json:"id"`
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	CustomerID   *uuid.UUID  `json:"customer_id,omitempty"`
	TableNumber  string      `json:"table_number,omitempty"`
	Status       OrderStatus `json:"status"`
	Items        []OrderItem `json:"items"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Total returns the order total in cents.
func (o *Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}
