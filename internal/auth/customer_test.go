package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comandero-software/comandero/internal/domain"
)

// fakeRedis is an in-memory RedisClient for tests.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.data[key]
	if !ok {
		cmd := redis.NewStringCmd(ctx)
		cmd.SetErr(redis.Nil)
		return cmd
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	var removed int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			delete(f.ttls, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestCustomerRealm_IssueAndVerify(t *testing.T) {
	rdb := newFakeRedis()
	realm := NewCustomerRealm(rdb, 30*24*time.Hour)
	customer := &domain.Customer{ID: uuid.New(), Email: "diner@example.test"}

	token, err := realm.Issue(context.Background(), customer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Only the token hash reaches the store
	_, hasPlain := rdb.data[customerSessionPrefix+token]
	assert.False(t, hasPlain)
	_, hasHash := rdb.data[sessionKey(token)]
	assert.True(t, hasHash)

	principal, err := realm.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, domain.RealmCustomer, principal.Realm)
	assert.Equal(t, customer.ID, principal.ID)
	assert.Equal(t, uuid.Nil, principal.RestaurantID)
}

func TestCustomerRealm_Verify_UnknownToken(t *testing.T) {
	realm := NewCustomerRealm(newFakeRedis(), time.Hour)

	_, err := realm.Verify(context.Background(), "never-issued")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCustomerRealm_RejectsStaffCredential(t *testing.T) {
	rdb := newFakeRedis()
	realm := NewCustomerRealm(rdb, time.Hour)

	// A staff JWT presented on the customer pipeline misses in Redis.
	store := new(MockStaffSessionStore)
	store.On("Create", mock.Anything, mock.Anything).Return(nil)
	staffRealm := NewStaffRealm(store, "staff-secret", "comandero", time.Hour)
	staffToken, _, err := staffRealm.Issue(context.Background(), testStaff())
	require.NoError(t, err)

	_, err = realm.Verify(context.Background(), staffToken)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCustomerRealm_Touch(t *testing.T) {
	rdb := newFakeRedis()
	realm := NewCustomerRealm(rdb, time.Hour)
	customer := &domain.Customer{ID: uuid.New()}

	token, err := realm.Issue(context.Background(), customer)
	require.NoError(t, err)

	before := rdb.data[sessionKey(token)]
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, realm.Touch(context.Background(), token))
	assert.NotEqual(t, before, rdb.data[sessionKey(token)], "last_active should change")
	assert.Equal(t, time.Hour, rdb.ttls[sessionKey(token)], "TTL should be refreshed")

	assert.ErrorIs(t, realm.Touch(context.Background(), "unknown"), domain.ErrSessionNotFound)
}

func TestCustomerRealm_Revoke(t *testing.T) {
	rdb := newFakeRedis()
	realm := NewCustomerRealm(rdb, time.Hour)

	token, err := realm.Issue(context.Background(), &domain.Customer{ID: uuid.New()})
	require.NoError(t, err)

	require.NoError(t, realm.Revoke(context.Background(), token))

	_, err = realm.Verify(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Revoking again is a no-op
	require.NoError(t, realm.Revoke(context.Background(), token))
}
