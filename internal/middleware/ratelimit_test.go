package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCheckRateLimit_BypassedOutsideProduction(t *testing.T) {
	for _, env := range []string{"test", "development"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "send_message", "1", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
		})
	}
}

func TestCheckRateLimit_NilClient(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, err := CheckRateLimit(context.Background(), nil, "send_message", "1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestCheckRateLimit_Counts(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "send_message", "user:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "send_message", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// other identities are counted separately
	allowed, err = CheckRateLimit(ctx, rdb, "send_message", "user:2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	rdb := newTestRedis(t)

	app := fiber.New()
	app.Get("/limited", RateLimit(rdb, 1, time.Minute, "limited"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRateLimitWithPolicy_FailClosed(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	app := fiber.New()
	app.Get("/closed", RateLimitWithPolicy(nil, 1, time.Minute, FailClosed), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/open", RateLimitWithPolicy(nil, 1, time.Minute, FailOpen), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/closed", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
