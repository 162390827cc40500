package domain

import (
	"time"

	"github.com/google/uuid"
)

// Staff roles
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleWaiter  = "waiter"
	RoleKitchen = "kitchen"
)

var validRoles = map[string]bool{
	RoleOwner:   true,
	RoleManager: true,
	RoleWaiter:  true,
	RoleKitchen: true,
}

// Staff is a dashboard/POS user belonging to exactly one restaurant.
type Staff struct {
	ID               uuid.UUID `json:"id"`
	RestaurantID     uuid.UUID `json:"restaurant_id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Role             string    `json:"role"`
	PasswordHash     string    `json:"-"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsValidRole checks whether the role is one of the known staff roles.
func IsValidRole(role string) bool {
	return validRoles[role]
}
