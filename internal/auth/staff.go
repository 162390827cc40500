package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/comandero-software/comandero/internal/domain"
)

var (
	// ErrInvalidToken is returned when token validation fails
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when token is expired
	ErrExpiredToken = errors.New("token expired")
	// ErrWrongRealm is returned when a token's realm claim does not match
	ErrWrongRealm = errors.New("token issued for another realm")
)

// StaffClaims represents JWT claims for a staff session cookie.
type StaffClaims struct {
	SessionID uuid.UUID `json:"sid"`
	Realm     string    `json:"realm"`
	jwt.RegisteredClaims
}

// StaffSessionStore is the persistence backing the staff realm. A token is
// only valid while its session row exists and is not revoked.
type StaffSessionStore interface {
	Create(ctx context.Context, session *domain.StaffSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffSession, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// StaffRealm verifies and issues staff session credentials: an HS256 JWT
// carrying the session id, backed by a Postgres session row. It shares no
// storage and no secret with the customer realm.
type StaffRealm struct {
	store     StaffSessionStore
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

func NewStaffRealm(store StaffSessionStore, secretKey, issuer string, ttl time.Duration) *StaffRealm {
	return &StaffRealm{
		store:     store,
		secretKey: []byte(secretKey),
		issuer:    issuer,
		ttl:       ttl,
	}
}

// Issue creates a session row for the staff member and signs a token for it.
func (r *StaffRealm) Issue(ctx context.Context, staff *domain.Staff) (string, *domain.StaffSession, error) {
	now := time.Now()

	session := &domain.StaffSession{
		ID:           uuid.New(),
		StaffID:      staff.ID,
		RestaurantID: staff.RestaurantID,
		IssuedAt:     now,
		LastActiveAt: now,
	}
	if err := r.store.Create(ctx, session); err != nil {
		return "", nil, err
	}

	claims := StaffClaims{
		SessionID: session.ID,
		Realm:     string(domain.RealmStaff),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    r.issuer,
			Subject:   staff.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(r.secretKey)
	if err != nil {
		return "", nil, err
	}

	return signed, session, nil
}

// Verify validates a staff token and resolves it to a principal. A customer
// realm credential (opaque token, not a JWT) fails the parse and is
// rejected here, never silently accepted.
func (r *StaffRealm) Verify(ctx context.Context, tokenString string) (domain.Principal, error) {
	claims, err := r.parse(tokenString)
	if err != nil {
		return domain.Anonymous, err
	}

	session, err := r.store.GetByID(ctx, claims.SessionID)
	if err != nil {
		return domain.Anonymous, err
	}
	if session.IsRevoked() {
		return domain.Anonymous, domain.ErrSessionRevoked
	}

	return domain.Principal{
		Realm:        domain.RealmStaff,
		ID:           session.StaffID,
		RestaurantID: session.RestaurantID,
	}, nil
}

// Revoke invalidates the session behind a token. Malformed tokens are a
// no-op rather than an error so sign-out is idempotent.
func (r *StaffRealm) Revoke(ctx context.Context, tokenString string) error {
	claims, err := r.parse(tokenString)
	if err != nil {
		return nil
	}
	return r.store.Revoke(ctx, claims.SessionID)
}

// SessionID extracts the session id from a token without touching the store.
func (r *StaffRealm) SessionID(tokenString string) (uuid.UUID, error) {
	claims, err := r.parse(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.SessionID, nil
}

func (r *StaffRealm) parse(tokenString string) (*StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*StaffClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Realm != string(domain.RealmStaff) {
		return nil, ErrWrongRealm
	}

	return claims, nil
}
