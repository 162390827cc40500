package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comandero-software/comandero/internal/domain"
)

// memorySessionStore is an in-memory StaffSessionStore for resolver tests.
type memorySessionStore struct {
	sessions map[uuid.UUID]*domain.StaffSession
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[uuid.UUID]*domain.StaffSession)}
}

func (s *memorySessionStore) Create(ctx context.Context, session *domain.StaffSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *memorySessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	now := time.Now()
	session.RevokedAt = &now
	return nil
}

func newTestResolver(t *testing.T) (*Resolver, string, string, *domain.Staff, *domain.Customer) {
	t.Helper()

	staffRealm := NewStaffRealm(newMemorySessionStore(), "staff-secret", "comandero", time.Hour)
	customerRealm := NewCustomerRealm(newFakeRedis(), time.Hour)

	staff := testStaff()
	staffToken, _, err := staffRealm.Issue(context.Background(), staff)
	require.NoError(t, err)

	customer := &domain.Customer{ID: uuid.New(), Email: "diner@example.test"}
	customerToken, err := customerRealm.Issue(context.Background(), customer)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(staffRealm, customerRealm, logger), staffToken, customerToken, staff, customer
}

func TestResolver_Resolve(t *testing.T) {
	resolver, staffToken, customerToken, staff, customer := newTestResolver(t)
	ctx := context.Background()

	t.Run("no credentials", func(t *testing.T) {
		assert.True(t, resolver.Resolve(ctx, "", "").IsAnonymous())
	})

	t.Run("valid staff cookie", func(t *testing.T) {
		principal := resolver.Resolve(ctx, staffToken, "")
		assert.Equal(t, domain.RealmStaff, principal.Realm)
		assert.Equal(t, staff.ID, principal.ID)
		assert.Equal(t, staff.RestaurantID, principal.RestaurantID)
	})

	t.Run("valid customer cookie", func(t *testing.T) {
		principal := resolver.Resolve(ctx, "", customerToken)
		assert.Equal(t, domain.RealmCustomer, principal.Realm)
		assert.Equal(t, customer.ID, principal.ID)
	})

	t.Run("credentials swapped between realms", func(t *testing.T) {
		// The customer token in the staff slot and vice versa: both
		// pipelines must reject, not cross-resolve.
		principal := resolver.Resolve(ctx, customerToken, staffToken)
		assert.True(t, principal.IsAnonymous())
	})

	t.Run("garbage cookies degrade to anonymous", func(t *testing.T) {
		principal := resolver.Resolve(ctx, "garbage", "garbage")
		assert.True(t, principal.IsAnonymous())
	})

	t.Run("staff cookie wins when both present", func(t *testing.T) {
		principal := resolver.Resolve(ctx, staffToken, customerToken)
		assert.Equal(t, domain.RealmStaff, principal.Realm)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse battery staple"))
	assert.Error(t, ComparePassword(hash, "wrong password"))
}

func TestHashToken_Deterministic(t *testing.T) {
	token, err := NewSessionToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	assert.Equal(t, HashToken(token), HashToken(token))

	other, err := NewSessionToken()
	require.NoError(t, err)
	assert.NotEqual(t, HashToken(token), HashToken(other))
}
