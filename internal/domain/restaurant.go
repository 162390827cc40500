package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Restaurant is the tenant of the platform. Every staff member, order and
// realtime room belongs to exactly one restaurant.
type Restaurant struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	IsActive  bool                   `json:"is_active"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Validate verifies the restaurant fields before persistence.
func (r *Restaurant) Validate() error {
	if r.Name == "" {
		return errors.New("restaurant name cannot be empty")
	}

	if r.Slug == "" {
		return errors.New("restaurant slug cannot be empty")
	}

	if !slugRegex.MatchString(r.Slug) {
		return errors.New("restaurant slug must contain only lowercase letters, numbers and hyphens")
	}

	return nil
}
