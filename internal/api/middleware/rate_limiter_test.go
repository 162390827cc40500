package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/comandero-software/comandero/internal/domain"
)

func newLimitedApp(rl *RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit"})
		},
	})
	app.Use(rl.Handler())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func limitedGet(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.NoError(t, err)
	return resp.StatusCode
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    5,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "staff:" + uuid.Nil.String()
			},
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		for i := 0; i < 5; i++ {
			assert.Equal(t, 200, limitedGet(t, app))
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "staff:" + uuid.Nil.String()
			},
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		assert.Equal(t, 200, limitedGet(t, app))
		assert.Equal(t, 200, limitedGet(t, app))
		assert.Equal(t, 429, limitedGet(t, app))
	})

	t.Run("principals have separate limits", func(t *testing.T) {
		var currentKey string
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return currentKey
			},
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		// Exhaust the staff principal's budget
		currentKey = "staff:" + uuid.NewString()
		assert.Equal(t, 200, limitedGet(t, app))
		assert.Equal(t, 200, limitedGet(t, app))
		assert.Equal(t, 429, limitedGet(t, app))

		// A customer principal is unaffected
		currentKey = "customer:" + uuid.NewString()
		assert.Equal(t, 200, limitedGet(t, app))
	})

	t.Run("anonymous requests are keyed by ip", func(t *testing.T) {
		// No KeyGenerator, so the default falls back to the client IP
		rl := NewRateLimiter(RateLimiterConfig{Max: 2, Window: time.Minute})
		defer rl.Stop()
		app := newLimitedApp(rl)

		assert.Equal(t, 200, limitedGet(t, app))
		assert.Equal(t, 200, limitedGet(t, app))
		assert.Equal(t, 429, limitedGet(t, app))
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:    10,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "staff:" + uuid.Nil.String()
			},
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.NoError(t, err)
		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()

	assert.Equal(t, 300, config.Max)
	assert.Equal(t, time.Minute, config.Window)
	assert.NotNil(t, config.KeyGenerator)
}

func TestDefaultKeyGenerator(t *testing.T) {
	config := DefaultRateLimiterConfig()

	var key string
	app := fiber.New()
	app.Get("/test", func(c *fiber.Ctx) error {
		c.Locals(LocalPrincipal, domain.Principal{
			Realm: domain.RealmStaff,
			ID:    uuid.MustParse("f4b2e6a0-0000-0000-0000-000000000001"),
		})
		key = config.KeyGenerator(c)
		return c.SendString("OK")
	})

	_, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.NoError(t, err)
	assert.Equal(t, "staff:f4b2e6a0-0000-0000-0000-000000000001", key)
}

func TestRateLimiter_Stop(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Max: 10, Window: time.Second})

	// Stop must not panic or block
	rl.Stop()
}
