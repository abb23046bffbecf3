package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader is the header clients can use to correlate a request
// with the structured log lines it produced.
const RequestIDHeader = "X-Request-Id"

// RequestID stamps every request with a uuid, reusing one supplied by the
// caller if present, and exposes it to downstream handlers via fiber's
// context locals under the same key as the response header.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(RequestIDHeader, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}
