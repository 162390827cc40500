package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comandero-software/comandero/internal/domain"
)

const customerSessionPrefix = "customer_session:"

// RedisClient is the subset of go-redis used by the customer realm.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CustomerRealm verifies and issues customer session credentials: an opaque
// random token whose SHA-256 hash keys a Redis record with a TTL. It shares
// no storage and no secret with the staff realm, so a staff JWT presented
// here simply misses in Redis and is rejected.
type CustomerRealm struct {
	rdb RedisClient
	ttl time.Duration
}

func NewCustomerRealm(rdb RedisClient, ttl time.Duration) *CustomerRealm {
	return &CustomerRealm{rdb: rdb, ttl: ttl}
}

// Issue creates a session record and returns the plaintext token for the
// cookie. Only the token hash is ever stored.
func (r *CustomerRealm) Issue(ctx context.Context, customer *domain.Customer) (string, error) {
	token, err := NewSessionToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := domain.CustomerSession{
		CustomerID:   customer.ID,
		IssuedAt:     now,
		LastActiveAt: now,
	}

	if err := r.save(ctx, token, session); err != nil {
		return "", err
	}
	return token, nil
}

// Verify resolves a customer token to a principal.
func (r *CustomerRealm) Verify(ctx context.Context, token string) (domain.Principal, error) {
	session, err := r.lookup(ctx, token)
	if err != nil {
		return domain.Anonymous, err
	}

	return domain.Principal{
		Realm: domain.RealmCustomer,
		ID:    session.CustomerID,
	}, nil
}

// Touch bumps last_active and refreshes the TTL on the session record.
func (r *CustomerRealm) Touch(ctx context.Context, token string) error {
	session, err := r.lookup(ctx, token)
	if err != nil {
		return err
	}

	session.LastActiveAt = time.Now()
	return r.save(ctx, token, session)
}

// Revoke deletes the session record. Unknown tokens are a no-op so
// sign-out is idempotent.
func (r *CustomerRealm) Revoke(ctx context.Context, token string) error {
	if err := r.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("revoke customer session: %w", err)
	}
	return nil
}

func (r *CustomerRealm) lookup(ctx context.Context, token string) (domain.CustomerSession, error) {
	var session domain.CustomerSession

	raw, err := r.rdb.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return session, domain.ErrSessionNotFound
	}
	if err != nil {
		return session, fmt.Errorf("get customer session: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return session, fmt.Errorf("decode customer session: %w", err)
	}
	return session, nil
}

func (r *CustomerRealm) save(ctx context.Context, token string, session domain.CustomerSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode customer session: %w", err)
	}

	if err := r.rdb.Set(ctx, sessionKey(token), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save customer session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	return customerSessionPrefix + HashToken(token)
}
