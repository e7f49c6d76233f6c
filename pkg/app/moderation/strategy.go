package moderation

import (
	"context"

	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/infra/classifier"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
)

const (
	MethodPrimary     = "primary_api"
	MethodHuggingFace = "huggingface_toxic_bert"
	MethodOpenAI      = "openai_moderation"
	MethodLocal       = "local_toxic_bert"
	MethodHeuristic   = "simple_rule_based"
)

var providerMethods = map[string]string{
	classifier.ProviderPrimary:     MethodPrimary,
	classifier.ProviderHuggingFace: MethodHuggingFace,
	classifier.ProviderOpenAI:      MethodOpenAI,
	classifier.ProviderLocal:       MethodLocal,
}

// Strategy is one step of the moderation chain.
//
//go:generate mockery --name=Strategy --dir=. --output=./mocks --filename=strategy_mock.go --case=underscore --with-expecter
type Strategy interface {
	Name() string
	Classify(ctx context.Context, text string, safer float64) (*domain.Result, error)
}

// Probeable strategies can report upstream reachability without user text.
type Probeable interface {
	Probe(ctx context.Context) error
}

type classifierStrategy struct {
	client classifier.Client
	method string
}

func NewClassifierStrategy(client classifier.Client) Strategy {
	method, ok := providerMethods[client.Name()]
	if !ok {
		method = client.Name()
	}
	return &classifierStrategy{client: client, method: method}
}

// NewStrategies adapts clients in order.
func NewStrategies(clients []classifier.Client) []Strategy {
	out := make([]Strategy, 0, len(clients))
	for _, c := range clients {
		out = append(out, NewClassifierStrategy(c))
	}
	return out
}

func (s *classifierStrategy) Name() string {
	return s.method
}

func (s *classifierStrategy) Classify(ctx context.Context, text string, safer float64) (*domain.Result, error) {
	prediction, err := s.client.Classify(ctx, text, safer)
	if err != nil {
		return nil, err
	}
	return Normalize(prediction, s.method)
}

func (s *classifierStrategy) Probe(ctx context.Context) error {
	return s.client.Probe(ctx)
}

func (s *classifierStrategy) CircuitState() string {
	if reporter, ok := s.client.(classifier.CircuitReporter); ok {
		return reporter.CircuitState()
	}
	return httpx.StateClosed
}
