package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(t *testing.T, client *redis.Client, max int) *fiber.App {
	t.Helper()
	rl := NewRateLimiter(client, nil)
	app := fiber.New()
	app.Post("/upload", rl.Limit("upload", max, time.Hour), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	return app
}

func post(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("POST", "/upload", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	app := newLimitedApp(t, client, 2)

	assert.Equal(t, fiber.StatusAccepted, post(t, app))
	assert.Equal(t, fiber.StatusAccepted, post(t, app))
	assert.Equal(t, fiber.StatusTooManyRequests, post(t, app))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "ratelimit:upload:")
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestRateLimiter_WindowResets(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	app := newLimitedApp(t, client, 1)

	assert.Equal(t, fiber.StatusAccepted, post(t, app))
	assert.Equal(t, fiber.StatusTooManyRequests, post(t, app))

	mr.FastForward(time.Hour + time.Second)
	assert.Equal(t, fiber.StatusAccepted, post(t, app))
}

func TestRateLimiter_AllowsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	app := newLimitedApp(t, client, 1)
	assert.Equal(t, fiber.StatusAccepted, post(t, app))
	assert.Equal(t, fiber.StatusAccepted, post(t, app))
}

func TestRateLimiter_NilClientIsOpen(t *testing.T) {
	app := newLimitedApp(t, nil, 1)
	assert.Equal(t, fiber.StatusAccepted, post(t, app))
	assert.Equal(t, fiber.StatusAccepted, post(t, app))
}
