package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/comandero-software/comandero/internal/domain"
)

type RateLimiterConfig struct {
	// Max requests per window
	Max int
	// Window duration
	Window time.Duration
	// KeyGenerator returns the limiting key for a request. An empty key
	// exempts the request.
	KeyGenerator func(c *fiber.Ctx) string
}

// DefaultRateLimiterConfig limits per principal. Anonymous requests fall
// back to the client IP so unauthenticated endpoints are still bounded.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Max:    300,
		Window: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			principal := GetPrincipal(c)
			if principal.IsAnonymous() {
				return "ip:" + c.IP()
			}
			return string(principal.Realm) + ":" + principal.ID.String()
		},
	}
}

// window is the counting state for one key.
type window struct {
	count      int
	resetAt    time.Time
	lastAccess time.Time
}

// RateLimiter is a fixed-window in-memory limiter keyed by principal.
// State is per process; with multiple API nodes each node enforces its
// own share of the budget.
type RateLimiter struct {
	config  RateLimiterConfig
	windows map[string]*window
	mu      sync.Mutex
	done    chan struct{}
}

func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	defaults := DefaultRateLimiterConfig()
	if config.Max == 0 {
		config.Max = defaults.Max
	}
	if config.Window == 0 {
		config.Window = defaults.Window
	}
	if config.KeyGenerator == nil {
		config.KeyGenerator = defaults.KeyGenerator
	}

	rl := &RateLimiter{
		config:  config,
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go rl.evictStale()

	return rl
}

// Stop halts the background eviction goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := rl.config.KeyGenerator(c)
		if key == "" {
			return c.Next()
		}

		count, resetAt := rl.take(key, time.Now())

		remaining := rl.config.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.config.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > rl.config.Max {
			c.Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))
			return domain.ErrRateLimitExceeded
		}

		return c.Next()
	}
}

// take counts one request against key and returns the running count and
// the end of the current window.
func (rl *RateLimiter) take(key string, now time.Time) (int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(rl.config.Window)}
		rl.windows[key] = w
	}
	w.count++
	w.lastAccess = now

	return w.count, w.resetAt
}

// evictStale drops keys that have been idle for two full windows.
func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, w := range rl.windows {
				if now.Sub(w.lastAccess) > 2*rl.config.Window {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
