package classifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRemote_TransportErrorOpensCircuit(t *testing.T) {
	httpClient := new(mocks.MockHTTPClient)
	httpClient.On("Do", mock.Anything).Return(nil, errors.New("connection refused"))

	client := NewLocalClient("http://tei.internal",
		WithHTTPClient(httpClient),
		WithLogger(quietLogger()),
		WithCircuitBreaker(httpx.NewCircuitBreaker("local", time.Minute, 2)),
	)

	for i := 0; i < 2; i++ {
		_, err := client.Classify(context.Background(), "text", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	}
	assert.Equal(t, httpx.StateOpen, client.CircuitState())

	_, err := client.Classify(context.Background(), "text", 0)
	require.Error(t, err)
	httpClient.AssertNumberOfCalls(t, "Do", 2)
}

func TestRemote_NonSuccessStatusIsTruncated(t *testing.T) {
	httpClient := new(mocks.MockHTTPClient)
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == http.MethodPost && req.URL.Path == "/predict" &&
			req.Header.Get("Content-Type") == "application/json"
	})).Return(&http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(strings.NewReader(strings.Repeat("x", 500))),
	}, nil)

	client := NewLocalClient("http://tei.internal/", WithHTTPClient(httpClient), WithLogger(quietLogger()))

	_, err := client.Classify(context.Background(), "text", 0)
	require.ErrorIs(t, err, ErrFailedUpstreamCall)
	assert.Contains(t, err.Error(), "status 502")
	assert.NotContains(t, err.Error(), strings.Repeat("x", 201))
	httpClient.AssertExpectations(t)
}
