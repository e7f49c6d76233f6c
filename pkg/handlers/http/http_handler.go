package http

import "github.com/gofiber/fiber/v2"

const ErrInvalidJsonPayload = "Invalid JSON payload"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Moderation
	AnalyzeHandler Handler

	// Operations
	HealthHandler         Handler
	TestConnectionHandler Handler
	GetVersionHandler     Handler
}
