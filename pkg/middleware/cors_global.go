package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	DefaultAllowOrigins = []string{"*"}
	DefaultAllowMethods = []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}
)

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowCredentials bool
	ExposeHeaders    []string
	MaxAge           string
}

type corsGlobalMiddleware struct {
	cfg CORSConfig
}

// NewCORSGlobalMiddleware answers preflights and decorates responses for the browser frontend.
// Empty origin or method lists fall back to the permissive defaults.
func NewCORSGlobalMiddleware(cfg CORSConfig) Middleware {
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = DefaultAllowOrigins
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = DefaultAllowMethods
	}
	return &corsGlobalMiddleware{cfg: cfg}
}

func (m *corsGlobalMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" || !m.allowed(origin) {
			return c.Next()
		}

		c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
		switch {
		case m.cfg.AllowCredentials:
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
			c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
		case hasStar(m.cfg.AllowOrigins):
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		default:
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		}
		if len(m.cfg.ExposeHeaders) > 0 {
			c.Set(fiber.HeaderAccessControlExposeHeaders, strings.Join(m.cfg.ExposeHeaders, ", "))
		}

		if c.Method() != fiber.MethodOptions || c.Get(fiber.HeaderAccessControlRequestMethod) == "" {
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowMethods, strings.Join(m.cfg.AllowMethods, ", "))
		if reqHeaders := c.Get(fiber.HeaderAccessControlRequestHeaders); reqHeaders != "" {
			c.Set(fiber.HeaderAccessControlAllowHeaders, reqHeaders)
		} else {
			c.Set(fiber.HeaderAccessControlAllowHeaders, fiber.HeaderContentType)
		}
		if m.cfg.MaxAge != "" {
			c.Set(fiber.HeaderAccessControlMaxAge, m.cfg.MaxAge)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (m *corsGlobalMiddleware) allowed(origin string) bool {
	for _, o := range m.cfg.AllowOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func hasStar(arr []string) bool {
	for _, v := range arr {
		if v == "*" {
			return true
		}
	}
	return false
}
