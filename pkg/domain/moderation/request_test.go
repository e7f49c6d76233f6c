package moderation_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		safer   *float64
		wantErr bool
	}{
		{name: "empty text", text: "", wantErr: true},
		{name: "whitespace only", text: "   \n\t ", wantErr: true},
		{name: "max length", text: strings.Repeat("a", 5000)},
		{name: "over max length", text: strings.Repeat("a", 5001), wantErr: true},
		{name: "max length after trim", text: "  " + strings.Repeat("a", 5000) + "  "},
		{name: "multibyte counted as characters", text: strings.Repeat("é", 5000)},
		{name: "safer above range", text: "hello", safer: ptr(1.5), wantErr: true},
		{name: "safer below range", text: "hello", safer: ptr(-0.1), wantErr: true},
		{name: "safer in range", text: "hello", safer: ptr(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := moderation.NewRequest(tt.text, tt.safer, "127.0.0.1")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, moderation.ErrValidation))
				assert.Equal(t, http.StatusBadRequest, moderation.StatusCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.text), req.Text)
		})
	}
}

func TestNewRequest_DefaultSafer(t *testing.T) {
	req, err := moderation.NewRequest(" hello ", nil, "client")
	require.NoError(t, err)
	assert.Equal(t, moderation.DefaultSafer, req.Safer)
	assert.Equal(t, "hello", req.Text)
	assert.Equal(t, 5, req.Length())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, moderation.StatusCode(moderation.NewRateLimitError(0)))
	assert.Equal(t, http.StatusServiceUnavailable, moderation.StatusCode(moderation.NewUnavailableError("down")))
	assert.Equal(t, http.StatusRequestTimeout, moderation.StatusCode(moderation.NewTimeoutError("slow")))
	assert.Equal(t, http.StatusServiceUnavailable, moderation.StatusCode(moderation.ErrUpstreamUnavailable))
	assert.Equal(t, http.StatusInternalServerError, moderation.StatusCode(errors.New("boom")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", moderation.Truncate("abc", 5))
	assert.Equal(t, "ab", moderation.Truncate("abc", 2))
	assert.Equal(t, "éé", moderation.Truncate("ééé", 2))
}

func TestResult_Analysis(t *testing.T) {
	r := &moderation.Result{
		IsFlagged:  true,
		MaxValue:   0.8,
		MaxKey:     "toxic",
		Categories: map[string]float64{"toxic": 0.8},
		Method:     "huggingface_toxic_bert",
		Extras:     map[string]any{"max_value": 0.1, "provider_field": "x"},
		Fallback:   true,
	}

	analysis := r.Analysis(12, 0.02)

	assert.Equal(t, 0.8, analysis["max_value"])
	assert.Equal(t, "x", analysis["provider_field"])
	assert.Equal(t, 12, analysis["text_analyzed"])
	assert.Equal(t, 0.02, analysis["safer_value"])
	assert.Equal(t, true, analysis["fallback_method"])
}

func TestMaskClientID(t *testing.T) {
	assert.Equal(t, "203.0.113.***", moderation.MaskClientID("203.0.113.77"))
	assert.Equal(t, "::1***", moderation.MaskClientID("::1"))
}
