package classifier

import (
	"context"
	"encoding/json"
	"errors"
)

const (
	ProviderPrimary     = "primary"
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderLocal       = "local"
)

var (
	ErrFailedUpstreamCall = errors.New("upstream classifier call failed")
	ErrContractMismatch   = errors.New("upstream does not expose the expected api")
	ErrNotConnected       = errors.New("upstream classifier is not connected")
)

// Client is a remote toxicity classifier.
//
//go:generate mockery --name=Client --dir=. --output=./mocks --filename=classifier_client_mock.go --case=underscore --with-expecter
type Client interface {
	Name() string
	Classify(ctx context.Context, text string, safer float64) (*Prediction, error)
	Probe(ctx context.Context) error
}

// CircuitReporter is implemented by clients that sit behind a circuit breaker.
type CircuitReporter interface {
	CircuitState() string
}

// Label is one entry of a text-classification label list.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Prediction is the raw provider answer. Exactly one of Labels, Scores or Analysis is set.
type Prediction struct {
	Provider string

	Labels []Label
	Scores map[string]float64

	// Analysis is the primary's analysis object, always a JSON object.
	Analysis  json.RawMessage
	ChartData json.RawMessage
}
