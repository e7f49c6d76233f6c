package middleware

import (
	"github.com/NeuralTrust/TextModerator/pkg/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestIDMiddleware struct{}

// NewRequestIDMiddleware keeps a caller supplied X-Request-Id or generates one.
func NewRequestIDMiddleware() Middleware {
	return &requestIDMiddleware{}
}

func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(common.RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Locals(common.RequestIDContextKey, id)
		c.Set(common.RequestIDHeader, id)
		return c.Next()
	}
}
