package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderName is the response header carrying the ray ID.
const HeaderName = "X-Ray-Id"

// LocalsKey is the Fiber locals key under which the ray ID is stored.
const LocalsKey = "ray_id"

// New returns a middleware that assigns a unique ray ID to every request.
// An incoming X-Ray-Id header is honored so upstream proxies can propagate
// their own trace IDs; otherwise a fresh UUID is generated.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)

		return c.Next()
	}
}
