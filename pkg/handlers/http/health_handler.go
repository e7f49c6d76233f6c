package http

import (
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
)

const (
	PrimaryConnected     = "connected"
	PrimaryDisconnected  = "disconnected"
	PrimaryNotConfigured = "not_configured"
)

type healthHandler struct {
	prober moderation.Prober
	strict bool
	now    func() time.Time
}

// NewHealthHandler reports cached strategy reachability. strict disables the
// heuristic fallback, which changes what counts as a fallback being available.
func NewHealthHandler(prober moderation.Prober, strict bool) Handler {
	return &healthHandler{prober: prober, strict: strict, now: time.Now}
}

// Handle @Summary Service health
// @Description Returns the reachability of every configured strategy. Probe results are cached briefly.
// @Tags Operations
// @Produce json
// @Success 200 {object} response.HealthResponse "Health report"
// @Router /health [get]
func (h *healthHandler) Handle(c *fiber.Ctx) error {
	report := h.prober.Probe(c.UserContext())

	primary := PrimaryNotConfigured
	if status, ok := report.Primary(); ok {
		primary = PrimaryDisconnected
		if status.Available() {
			primary = PrimaryConnected
		}
	}

	fallback := !h.strict
	for i, status := range report.Strategies {
		if i > 0 && status.Available() {
			fallback = true
		}
	}

	strategies := report.Strategies
	if strategies == nil {
		strategies = []moderation.StrategyStatus{}
	}

	return c.Status(fiber.StatusOK).JSON(response.HealthResponse{
		Status:            "healthy",
		Timestamp:         h.now().UTC().Format(time.RFC3339),
		Strategies:        strategies,
		PrimaryAPIStatus:  primary,
		FallbackAvailable: fallback,
		CheckedAt:         report.CheckedAt.Format(time.RFC3339),
	})
}
