package auth

import "github.com/gofiber/fiber/v2"

// HeaderName is the request header carrying the API key.
const HeaderName = "X-Api-Key"

// Config holds configuration for the API key middleware.
type Config struct {
	// ApiKey is the expected key. If empty, authentication is disabled.
	ApiKey string
}

// New returns a middleware that rejects requests without a valid API key.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// No key configured means the deployment runs open (dev mode).
		if cfg.ApiKey == "" {
			return c.Next()
		}

		if c.Get(HeaderName) != cfg.ApiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}

		return c.Next()
	}
}
