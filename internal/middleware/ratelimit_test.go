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

func productionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "production")
}

func newLimiterClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCheckRateLimit(t *testing.T) {
	productionEnv(t)
	mr, rdb := newLimiterClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "claim_item", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "claim_item", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request exceeds the limit")

	// A different user has an independent counter.
	allowed, err = CheckRateLimit(ctx, rdb, "claim_item", "user:2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// The counter expires with the window.
	mr.FastForward(2 * time.Minute)
	allowed, err = CheckRateLimit(ctx, rdb, "claim_item", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_BypassedOutsideProduction(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	// nil client would error in production; in test env the check short-circuits.
	allowed, err := CheckRateLimit(context.Background(), nil, "login", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	productionEnv(t)
	_, rdb := newLimiterClient(t)

	app := fiber.New()
	app.Get("/ping",
		func(c *fiber.Ctx) error { c.Locals("userID", uint(42)); return c.Next() },
		RateLimit(rdb, 2, time.Minute, "ping"),
		func(c *fiber.Ctx) error { return c.SendString("pong") },
	)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestRateLimitFailPolicies(t *testing.T) {
	productionEnv(t)
	mr, rdb := newLimiterClient(t)
	mr.Close() // limiter store down

	t.Run("fail open lets requests through", func(t *testing.T) {
		app := fiber.New()
		app.Get("/open", RateLimitWithPolicy(rdb, 1, time.Minute, FailOpen, "open"),
			func(c *fiber.Ctx) error { return c.SendString("ok") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fail closed returns 503", func(t *testing.T) {
		app := fiber.New()
		app.Get("/closed", RateLimitWithPolicy(rdb, 1, time.Minute, FailClosed, "closed"),
			func(c *fiber.Ctx) error { return c.SendString("ok") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/closed", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
