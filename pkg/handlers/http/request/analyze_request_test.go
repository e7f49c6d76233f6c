package request

import (
	"strings"
	"testing"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeRequest_ToDomain(t *testing.T) {
	text := "  some text  "
	safer := 0.4

	req, err := (&AnalyzeRequest{Text: &text, Safer: &safer}).ToDomain("203.0.113.1")
	require.NoError(t, err)
	assert.Equal(t, "some text", req.Text)
	assert.Equal(t, 0.4, req.Safer)
	assert.Equal(t, "203.0.113.1", req.ClientID)

	_, err = (&AnalyzeRequest{}).ToDomain("c")
	assert.ErrorIs(t, err, moderation.ErrValidation)
	assert.EqualError(t, err, ErrMissingText.Error())

	long := strings.Repeat("a", moderation.MaxTextLength+1)
	_, err = (&AnalyzeRequest{Text: &long}).ToDomain("c")
	assert.ErrorIs(t, err, moderation.ErrValidation)
}
