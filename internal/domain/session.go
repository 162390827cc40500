package domain

import (
	"time"

	"github.com/google/uuid"
)

// StaffSession is the server-side record backing a staff JWT cookie. The
// token itself carries the session id; the row is the revocation authority.
type StaffSession struct {
	ID           uuid.UUID  `json:"id"`
	StaffID      uuid.UUID  `json:"staff_id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	IssuedAt     time.Time  `json:"issued_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

func (s *StaffSession) IsRevoked() bool {
	return s.RevokedAt != nil
}

// CustomerSession lives in Redis, keyed by the SHA-256 hash of an opaque
// token. It shares nothing with the staff realm.
type CustomerSession struct {
	CustomerID   uuid.UUID `json:"customer_id"`
	IssuedAt     time.Time `json:"issued_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}
