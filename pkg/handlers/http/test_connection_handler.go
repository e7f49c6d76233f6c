package http

import (
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/handlers/http/response"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/gofiber/fiber/v2"
)

const (
	OverallWorking = "working"
	OverallPartial = "partial"
	OverallError   = "error"
)

type testConnectionHandler struct {
	prober moderation.Prober
	strict bool
	now    func() time.Time
}

func NewTestConnectionHandler(prober moderation.Prober, strict bool) Handler {
	return &testConnectionHandler{prober: prober, strict: strict, now: time.Now}
}

// Handle @Summary Test upstream connections
// @Description Probes every strategy now, bypassing the health cache.
// @Tags Operations
// @Produce json
// @Success 200 {object} response.TestConnectionResponse "Connection report"
// @Router /api/test-connection [get]
func (h *testConnectionHandler) Handle(c *fiber.Ctx) error {
	report := h.prober.Force(c.UserContext())

	results := make(map[string]response.ConnectionResult, len(report.Strategies)+1)
	overall := OverallError
	for _, status := range report.Strategies {
		result := response.ConnectionResult{
			Available: status.Circuit != httpx.StateOpen,
			Working:   status.Available(),
		}
		if status.Error != "" {
			msg := status.Error
			result.Error = &msg
		}
		results[status.Name] = result

		switch {
		case result.Working:
			overall = OverallWorking
		case result.Available && overall == OverallError:
			overall = OverallPartial
		}
	}

	// The heuristic is listed but only decides the status when nothing upstream is configured.
	if !h.strict {
		results[moderation.MethodHeuristic] = response.ConnectionResult{Available: true, Working: true}
		if len(report.Strategies) == 0 {
			overall = OverallWorking
		}
	}

	return c.Status(fiber.StatusOK).JSON(response.TestConnectionResponse{
		Success:       overall != OverallError,
		Results:       results,
		OverallStatus: overall,
		Timestamp:     h.now().UTC().Format(time.RFC3339),
	})
}
