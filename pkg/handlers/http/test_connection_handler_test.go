package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/app/moderation/mocks"
	"github.com/NeuralTrust/TextModerator/pkg/handlers/http/response"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func getTestConnection(t *testing.T, prober *mocks.Prober, strict bool) response.TestConnectionResponse {
	t.Helper()
	app := fiber.New()
	app.Get("/api/test-connection", NewTestConnectionHandler(prober, strict).Handle)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/test-connection", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body response.TestConnectionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestTestConnectionHandler_Working(t *testing.T) {
	prober := new(mocks.Prober)
	prober.On("Force", mock.Anything).Return(probeReport(up("primary_api"), down("openai_moderation", httpx.StateOpen)))

	body := getTestConnection(t, prober, true)

	assert.True(t, body.Success)
	assert.Equal(t, OverallWorking, body.OverallStatus)
	assert.True(t, body.Results["primary_api"].Working)
	assert.Nil(t, body.Results["primary_api"].Error)

	openai := body.Results["openai_moderation"]
	assert.False(t, openai.Available)
	assert.False(t, openai.Working)
	require.NotNil(t, openai.Error)
	assert.Equal(t, "connection refused", *openai.Error)
	assert.NotContains(t, body.Results, moderation.MethodHeuristic)
	prober.AssertNotCalled(t, "Probe", mock.Anything)
}

func TestTestConnectionHandler_Partial(t *testing.T) {
	prober := new(mocks.Prober)
	prober.On("Force", mock.Anything).Return(probeReport(down("primary_api", httpx.StateClosed)))

	body := getTestConnection(t, prober, true)

	assert.True(t, body.Success)
	assert.Equal(t, OverallPartial, body.OverallStatus)
	assert.True(t, body.Results["primary_api"].Available)
}

func TestTestConnectionHandler_Error(t *testing.T) {
	prober := new(mocks.Prober)
	prober.On("Force", mock.Anything).Return(probeReport(down("primary_api", httpx.StateOpen)))

	body := getTestConnection(t, prober, true)

	assert.False(t, body.Success)
	assert.Equal(t, OverallError, body.OverallStatus)
}

func TestTestConnectionHandler_HeuristicDoesNotMaskUpstreamFailure(t *testing.T) {
	prober := new(mocks.Prober)
	prober.On("Force", mock.Anything).Return(probeReport(down("primary_api", httpx.StateOpen)))

	body := getTestConnection(t, prober, false)

	assert.False(t, body.Success)
	assert.Equal(t, OverallError, body.OverallStatus)
	assert.True(t, body.Results[moderation.MethodHeuristic].Working)
	assert.False(t, body.Results["primary_api"].Working)
}

func TestTestConnectionHandler_PartialWhenNotStrict(t *testing.T) {
	prober := new(mocks.Prober)
	prober.On("Force", mock.Anything).Return(probeReport(
		down("primary_api", httpx.StateOpen),
		down("openai_moderation", httpx.StateClosed),
	))

	body := getTestConnection(t, prober, false)

	assert.True(t, body.Success)
	assert.Equal(t, OverallPartial, body.OverallStatus)
}

func TestTestConnectionHandler_HeuristicOnly(t *testing.T) {
	prober := new(mocks.Prober)
	prober.On("Force", mock.Anything).Return(probeReport())

	body := getTestConnection(t, prober, false)

	assert.True(t, body.Success)
	assert.Equal(t, OverallWorking, body.OverallStatus)
	assert.Len(t, body.Results, 1)
}
