package auth_test

import (
	"net/http/httptest"
	"testing"

	"stocktake/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newApp(key string) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(auth.Config{ApiKey: key}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestNew(t *testing.T) {
	t.Run("Disabled When Unset", func(t *testing.T) {
		resp, err := newApp("").Test(httptest.NewRequest("GET", "/", nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("Rejects Missing Key", func(t *testing.T) {
		resp, err := newApp("secret").Test(httptest.NewRequest("GET", "/", nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Rejects Wrong Key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(auth.HeaderName, "nope")
		resp, err := newApp("secret").Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Accepts Valid Key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(auth.HeaderName, "secret")
		resp, err := newApp("secret").Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
