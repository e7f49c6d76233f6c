package mocks

import (
	"context"

	"github.com/NeuralTrust/TextModerator/pkg/infra/ratelimit"
	"github.com/stretchr/testify/mock"
)

type Limiter struct {
	mock.Mock
}

func (m *Limiter) Allow(ctx context.Context, clientID string) (ratelimit.Decision, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(ratelimit.Decision), args.Error(1) //nolint:errcheck
}
