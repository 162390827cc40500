package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/comandero-software/comandero/internal/domain"
)

type RestaurantRepository struct {
	pool PgxPool
}

func NewRestaurantRepository(pool PgxPool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	query := `
		INSERT INTO restaurants (id, name, slug, is_active, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if restaurant.ID == uuid.Nil {
		restaurant.ID = uuid.New()
	}

	if restaurant.Settings == nil {
		restaurant.Settings = make(map[string]interface{})
	}

	err := r.pool.QueryRow(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Slug,
		restaurant.IsActive,
		restaurant.Settings,
	).Scan(&restaurant.CreatedAt, &restaurant.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AppError{
				Code:       "RESTAURANT_ALREADY_EXISTS",
				Message:    "Restaurant with this slug already exists",
				StatusCode: 409,
			}
		}
		return fmt.Errorf("create restaurant: %w", err)
	}

	return nil
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	query := `
		SELECT id, name, slug, is_active, settings, created_at, updated_at
		FROM restaurants
		WHERE id = $1
	`

	restaurant, err := scanRestaurant(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant by id: %w", err)
	}

	return restaurant, nil
}

func (r *RestaurantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Restaurant, error) {
	query := `
		SELECT id, name, slug, is_active, settings, created_at, updated_at
		FROM restaurants
		WHERE slug = $1
	`

	restaurant, err := scanRestaurant(r.pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant by slug: %w", err)
	}

	return restaurant, nil
}

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Slug,
		&restaurant.IsActive,
		&restaurant.Settings,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}
