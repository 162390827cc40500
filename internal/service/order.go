package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/domain"
	"github.com/comandero-software/comandero/internal/repository"
	"github.com/comandero-software/comandero/internal/ws"
)

type OrderService struct {
	orderRepo repository.OrderRepositoryInterface
	publisher ws.Publisher
	logger    *slog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepositoryInterface,
	publisher ws.Publisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrderInput is the payload for opening a new order
type CreateOrderInput struct {
	TableNumber string             `json:"table_number"`
	CustomerID  *uuid.UUID         `json:"customer_id,omitempty"`
	Items       []domain.OrderItem `json:"items"`
	Notes       string             `json:"notes"`
}

// Create opens a new order and broadcasts it to the restaurant's room.
func (s *OrderService) Create(ctx context.Context, restaurantID uuid.UUID, input CreateOrderInput) (*domain.Order, error) {
	// 1. Validate input
	if input.TableNumber == "" {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("table_number is required"))
	}
	if len(input.Items) == 0 {
		return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("order must have at least one item"))
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("item %d: quantity must be positive", i))
		}
		if item.UnitPrice < 0 {
			return nil, domain.ErrValidationFailed.WithError(fmt.Errorf("item %d: unit_price must not be negative", i))
		}
	}

	// 2. Persist
	order := &domain.Order{
		RestaurantID: restaurantID,
		CustomerID:   input.CustomerID,
		TableNumber:  input.TableNumber,
		Status:       domain.StatusPending,
		Items:        input.Items,
		Notes:        input.Notes,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	// 3. Broadcast after the write has committed
	s.publisher.Publish(ws.RestaurantRoom(restaurantID), ws.EventOrderCreated, order)

	s.logger.Info("order created",
		"order_id", order.ID,
		"restaurant_id", restaurantID,
		"table", order.TableNumber,
	)

	return order, nil
}

// GetByID fetches a single order scoped to the restaurant.
func (s *OrderService) GetByID(ctx context.Context, restaurantID, orderID uuid.UUID) (*domain.Order, error) {
	return s.orderRepo.GetByID(ctx, restaurantID, orderID)
}

// ListOpen returns the restaurant's orders that are not yet completed or
// cancelled, oldest first.
func (s *OrderService) ListOpen(ctx context.Context, restaurantID uuid.UUID) ([]domain.Order, error) {
	return s.orderRepo.ListOpen(ctx, restaurantID)
}

// UpdateStatus moves an order through its lifecycle. The returned order is
// the post-mutation row from the database, never a locally patched copy,
// and the same snapshot is what gets broadcast to the restaurant's room.
func (s *OrderService) UpdateStatus(ctx context.Context, restaurantID, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	// 1. Reject unknown statuses before touching the database
	if !domain.IsValidStatus(status) {
		return nil, domain.ErrInvalidOrderStatus.WithError(fmt.Errorf("unknown status %q", status))
	}

	// 2. Check the transition against the current state
	current, err := s.orderRepo.GetByID(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.CanTransition(current.Status, status); err != nil {
		return nil, err
	}

	// 3. Apply as a compare-and-swap against the state we validated. If a
	// concurrent caller moved the order first, the swap loses and reports
	// an invalid transition instead of silently double-applying.
	order, err := s.orderRepo.UpdateStatus(ctx, restaurantID, orderID, current.Status, status)
	if err != nil {
		return nil, err
	}

	// 4. Broadcast the committed snapshot
	s.publisher.Publish(ws.RestaurantRoom(restaurantID), ws.EventOrderUpdated, order)

	s.logger.Info("order status updated",
		"order_id", order.ID,
		"restaurant_id", restaurantID,
		"from", current.Status,
		"to", order.Status,
	)

	return order, nil
}
