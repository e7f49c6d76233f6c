package mocks

import (
	"context"

	moderation "github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/stretchr/testify/mock"
)

type Moderator struct {
	mock.Mock
}

func (m *Moderator) Classify(ctx context.Context, req *domain.Request) (*domain.Result, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*domain.Result) //nolint:errcheck
	return result, args.Error(1)
}

func (m *Moderator) Strategies() []moderation.Strategy {
	args := m.Called()
	strategies, _ := args.Get(0).([]moderation.Strategy) //nolint:errcheck
	return strategies
}

func (m *Moderator) Strict() bool {
	args := m.Called()
	return args.Bool(0)
}

type Prober struct {
	mock.Mock
}

func (m *Prober) Probe(ctx context.Context) moderation.ProbeReport {
	args := m.Called(ctx)
	return args.Get(0).(moderation.ProbeReport) //nolint:errcheck
}

func (m *Prober) Force(ctx context.Context) moderation.ProbeReport {
	args := m.Called(ctx)
	return args.Get(0).(moderation.ProbeReport) //nolint:errcheck
}
