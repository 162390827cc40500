package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/comandero-software/comandero/internal/domain"
)

type OrderRepository struct {
	pool PgxPool
}

func NewOrderRepository(pool PgxPool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, restaurant_id, customer_id, table_number, status, items, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = domain.StatusPending
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		order.ID,
		order.RestaurantID,
		order.CustomerID,
		order.TableNumber,
		order.Status,
		items,
		order.Notes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, restaurant_id, customer_id, table_number, status, items, notes, created_at, updated_at
		FROM orders
		WHERE id = $1 AND restaurant_id = $2
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, restaurantID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	return order, nil
}

func (r *OrderRepository) ListOpen(ctx context.Context, restaurantID uuid.UUID) ([]domain.Order, error) {
	query := `
		SELECT id, restaurant_id, customer_id, table_number, status, items, notes, created_at, updated_at
		FROM orders
		WHERE restaurant_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// UpdateStatus applies the status mutation and returns the post-mutation
// row in one statement, so callers always publish a consistent snapshot.
// The WHERE clause pins the expected current status, making the mutation a
// compare-and-swap: two stations racing the same transition cannot both
// win, the loser's UPDATE matches zero rows.
func (r *OrderRepository) UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to domain.OrderStatus) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $4, updated_at = NOW()
		WHERE id = $1 AND restaurant_id = $2 AND status = $3
		RETURNING id, restaurant_id, customer_id, table_number, status, items, notes, created_at, updated_at
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, restaurantID, from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidTransition.WithError(
			fmt.Errorf("order %s is no longer %s", id, from))
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return order, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	var items []byte

	err := row.Scan(
		&order.ID,
		&order.RestaurantID,
		&order.CustomerID,
		&order.TableNumber,
		&order.Status,
		&items,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
	}

	return &order, nil
}
