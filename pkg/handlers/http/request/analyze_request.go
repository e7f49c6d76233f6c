package request

import (
	"errors"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
)

var ErrMissingText = errors.New("Missing 'text' field in request body") //nolint:staticcheck

type AnalyzeRequest struct {
	Text  *string  `json:"text"`
	Safer *float64 `json:"safer,omitempty"`
}

// ToDomain validates the payload and builds the moderation request for clientID.
func (r *AnalyzeRequest) ToDomain(clientID string) (*moderation.Request, error) {
	if r.Text == nil {
		return nil, moderation.NewValidationError(ErrMissingText.Error())
	}
	return moderation.NewRequest(*r.Text, r.Safer, clientID)
}
