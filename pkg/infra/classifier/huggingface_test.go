package classifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuggingFaceClient_Classify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []Label
	}{
		{
			name:     "nested label list",
			response: `[[{"label":"toxic","score":0.93},{"label":"insult","score":0.41}]]`,
			want:     []Label{{Label: "toxic", Score: 0.93}, {Label: "insult", Score: 0.41}},
		},
		{
			name:     "flat label list",
			response: `[{"label":"toxic","score":0.02}]`,
			want:     []Label{{Label: "toxic", Score: 0.02}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "Bearer hf_secret", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client := NewHuggingFaceClient(server.URL, "hf_secret", WithLogger(quietLogger()))
			prediction, err := client.Classify(context.Background(), "text", 0.02)
			require.NoError(t, err)
			assert.Equal(t, ProviderHuggingFace, prediction.Provider)
			assert.Equal(t, tt.want, prediction.Labels)
		})
	}
}

func TestHuggingFaceClient_Errors(t *testing.T) {
	t.Run("non 2xx truncates body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(strings.Repeat("x", 500)))
		}))
		defer server.Close()

		_, err := NewHuggingFaceClient(server.URL, "hf", WithLogger(quietLogger())).Classify(context.Background(), "text", 0.02)
		require.ErrorIs(t, err, ErrFailedUpstreamCall)
		assert.Contains(t, err.Error(), "status 503")
		assert.NotContains(t, err.Error(), strings.Repeat("x", 201))
	})

	t.Run("unexpected payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"model loading"}`))
		}))
		defer server.Close()

		_, err := NewHuggingFaceClient(server.URL, "hf", WithLogger(quietLogger())).Classify(context.Background(), "text", 0.02)
		assert.ErrorIs(t, err, moderation.ErrParse)
	})

	t.Run("empty list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[[]]`))
		}))
		defer server.Close()

		_, err := NewHuggingFaceClient(server.URL, "hf", WithLogger(quietLogger())).Classify(context.Background(), "text", 0.02)
		assert.ErrorIs(t, err, moderation.ErrParse)
	})
}

func TestLocalClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/predict":
			_, _ = w.Write([]byte(`[{"label":"toxic","score":0.7}]`))
		case "/health":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewLocalClient(server.URL+"/", WithLogger(quietLogger()))
	assert.Equal(t, ProviderLocal, client.Name())
	require.NoError(t, client.Probe(context.Background()))

	prediction, err := client.Classify(context.Background(), "text", 0.02)
	require.NoError(t, err)
	assert.Equal(t, []Label{{Label: "toxic", Score: 0.7}}, prediction.Labels)
}
