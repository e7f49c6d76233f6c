package mocks

import (
	"context"

	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/stretchr/testify/mock"
)

type Strategy struct {
	mock.Mock
}

func (m *Strategy) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *Strategy) Classify(ctx context.Context, text string, safer float64) (*domain.Result, error) {
	args := m.Called(ctx, text, safer)
	result, _ := args.Get(0).(*domain.Result) //nolint:errcheck
	return result, args.Error(1)
}

// ProbeableStrategy is a Strategy that also answers probes.
type ProbeableStrategy struct {
	Strategy
}

func (m *ProbeableStrategy) Probe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func NewStrategy(name string) *Strategy {
	m := &Strategy{}
	m.On("Name").Return(name).Maybe()
	return m
}

func NewProbeableStrategy(name string) *ProbeableStrategy {
	m := &ProbeableStrategy{}
	m.On("Name").Return(name).Maybe()
	return m
}
