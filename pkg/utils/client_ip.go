package utils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ExtractClientID identifies the caller for rate limiting: the first X-Forwarded-For
// address, then X-Real-IP, then the socket address.
func ExtractClientID(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return c.IP()
}
