package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/app/moderation/mocks"
	"github.com/NeuralTrust/TextModerator/pkg/handlers/http/response"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func probeReport(statuses ...moderation.StrategyStatus) moderation.ProbeReport {
	return moderation.ProbeReport{Strategies: statuses, CheckedAt: fixedNow}
}

func up(name string) moderation.StrategyStatus {
	return moderation.StrategyStatus{Name: name, Status: moderation.StatusAvailable, Circuit: httpx.StateClosed}
}

func down(name, circuit string) moderation.StrategyStatus {
	return moderation.StrategyStatus{Name: name, Status: moderation.StatusUnavailable, Error: "connection refused", Circuit: circuit}
}

func getHealth(t *testing.T, prober *mocks.Prober, strict bool) response.HealthResponse {
	t.Helper()
	app := fiber.New()
	app.Get("/health", NewHealthHandler(prober, strict).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body response.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name         string
		report       moderation.ProbeReport
		strict       bool
		wantPrimary  string
		wantFallback bool
	}{
		{
			name:         "primary connected",
			report:       probeReport(up("primary_api"), down("huggingface_toxic_bert", httpx.StateClosed)),
			wantPrimary:  PrimaryConnected,
			wantFallback: true,
		},
		{
			name:         "primary down strict with working secondary",
			report:       probeReport(down("primary_api", httpx.StateOpen), up("openai_moderation")),
			strict:       true,
			wantPrimary:  PrimaryDisconnected,
			wantFallback: true,
		},
		{
			name:         "strict without secondaries",
			report:       probeReport(down("primary_api", httpx.StateClosed)),
			strict:       true,
			wantPrimary:  PrimaryDisconnected,
			wantFallback: false,
		},
		{
			name:         "nothing configured",
			report:       probeReport(),
			wantPrimary:  PrimaryNotConfigured,
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prober := new(mocks.Prober)
			prober.On("Probe", mock.Anything).Return(tt.report)

			body := getHealth(t, prober, tt.strict)

			assert.Equal(t, "healthy", body.Status)
			assert.Equal(t, tt.wantPrimary, body.PrimaryAPIStatus)
			assert.Equal(t, tt.wantFallback, body.FallbackAvailable)
			assert.Len(t, body.Strategies, len(tt.report.Strategies))
			assert.Equal(t, fixedNow.Format(time.RFC3339), body.CheckedAt)
			prober.AssertNotCalled(t, "Force", mock.Anything)
		})
	}
}
