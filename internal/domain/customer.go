package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an end user of the public ordering pages. Customer accounts
// are platform-wide, not scoped to a restaurant.
type Customer struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
