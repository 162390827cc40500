package domain

import (
	"github.com/google/uuid"
)

// Realm identifies an independent identity domain. Staff and customer
// credentials never share a session store or an id namespace.
type Realm string

const (
	RealmStaff    Realm = "staff"
	RealmCustomer Realm = "customer"
)

// PrincipalKey is the request-locals key the session middleware stores the
// resolved principal under. Every consumer reads through this constant so
// the key cannot drift between packages.
const PrincipalKey = "principal"

// Principal is the resolved identity of a request, tagged with its realm.
// The zero value is Anonymous.
type Principal struct {
	Realm        Realm     `json:"realm,omitempty"`
	ID           uuid.UUID `json:"id,omitempty"`
	RestaurantID uuid.UUID `json:"restaurant_id,omitempty"`
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

func (p Principal) IsAnonymous() bool {
	return p.Realm == ""
}

func (p Principal) IsStaff() bool {
	return p.Realm == RealmStaff
}

func (p Principal) IsCustomer() bool {
	return p.Realm == RealmCustomer
}
