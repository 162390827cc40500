package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/domain"
)

// OrderRepositoryInterface defines operations for order data access. All
// lookups are scoped to a restaurant so one tenant can never read another's
// tickets.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, restaurantID, id uuid.UUID) (*domain.Order, error)
	ListOpen(ctx context.Context, restaurantID uuid.UUID) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to domain.OrderStatus) (*domain.Order, error)
}

// StaffRepositoryInterface defines operations for staff data access
type StaffRepositoryInterface interface {
	Create(ctx context.Context, staff *domain.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error)
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)
}

// CustomerRepositoryInterface defines operations for customer data access
type CustomerRepositoryInterface interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

// StaffSessionRepositoryInterface defines operations for the staff realm's
// session rows
type StaffSessionRepositoryInterface interface {
	Create(ctx context.Context, session *domain.StaffSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffSession, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	UpdateLastActive(ctx context.Context, id uuid.UUID) error
	DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// RestaurantRepositoryInterface defines operations for restaurant data access
type RestaurantRepositoryInterface interface {
	Create(ctx context.Context, restaurant *domain.Restaurant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Restaurant, error)
}
