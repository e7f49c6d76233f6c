package router

import (
	"errors"

	handlers "github.com/NeuralTrust/TextModerator/pkg/handlers/http"
	"github.com/NeuralTrust/TextModerator/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const (
	AnalyzePath        = "/api/analyze"
	TestConnectionPath = "/api/test-connection"
	HealthPath         = "/health"
	VersionPath        = "/version"
	PingPath           = "/__/ping"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

type ModeratorRouterConfig struct {
	EnableDocs bool
	// DocsURL is where the swagger UI fetches swagger.json from.
	DocsURL string
}

type moderatorRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	cfg                 ModeratorRouterConfig
}

func NewModeratorRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	cfg ModeratorRouterConfig,
) ServerRouter {
	return &moderatorRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		cfg:                 cfg,
	}
}

func (r *moderatorRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	if h.AnalyzeHandler == nil || h.HealthHandler == nil ||
		h.TestConnectionHandler == nil || h.GetVersionHandler == nil {
		return ErrInvalidHandlerTransport
	}

	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	if r.middlewareTransport != nil {
		if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
			router.Use(mws...)
		}
	}

	if r.cfg.EnableDocs {
		docsURL := r.cfg.DocsURL
		if docsURL == "" {
			docsURL = "/swagger.json"
		}
		router.Static("/swagger.json", "./docs/swagger.json")
		router.Get("/docs/*", swagger.New(swagger.Config{
			URL: docsURL,
		}))
	}

	router.Get(HealthPath, h.HealthHandler.Handle)
	router.Get(VersionPath, h.GetVersionHandler.Handle)
	router.Post(AnalyzePath, h.AnalyzeHandler.Handle)
	router.Get(TestConnectionPath, h.TestConnectionHandler.Handle)
	return nil
}
