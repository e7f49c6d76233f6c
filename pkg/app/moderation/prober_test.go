package moderation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/app/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/app/moderation/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestProber_CachesUntilForced(t *testing.T) {
	primary := mocks.NewProbeableStrategy(moderation.MethodPrimary)
	primary.On("Probe", mock.Anything).Return(nil).Times(2)
	local := mocks.NewProbeableStrategy(moderation.MethodLocal)
	local.On("Probe", mock.Anything).Return(errors.New("dial tcp 127.0.0.1:8080: connection refused")).Times(2)

	prober := moderation.NewProber(quietLogger(), []moderation.Strategy{primary, local}, time.Minute)

	report := prober.Probe(context.Background())
	assert.Len(t, report.Strategies, 2)
	assert.Equal(t, moderation.StatusAvailable, report.Strategies[0].Status)
	assert.Equal(t, moderation.StatusUnavailable, report.Strategies[1].Status)
	assert.Contains(t, report.Strategies[1].Error, "connection refused")
	assert.Equal(t, "closed", report.Strategies[0].Circuit)

	primaryStatus, ok := report.Primary()
	assert.True(t, ok)
	assert.True(t, primaryStatus.Available())

	_ = prober.Probe(context.Background())
	primary.AssertNumberOfCalls(t, "Probe", 1)

	_ = prober.Force(context.Background())
	primary.AssertNumberOfCalls(t, "Probe", 2)
	local.AssertNumberOfCalls(t, "Probe", 2)
}

func TestProber_NonProbeableStrategyIsAvailable(t *testing.T) {
	prober := moderation.NewProber(quietLogger(), []moderation.Strategy{moderation.NewHeuristicStrategy()}, time.Minute)
	report := prober.Probe(context.Background())
	assert.Equal(t, moderation.StatusAvailable, report.Strategies[0].Status)
}

func TestProbeReport_Primary_Empty(t *testing.T) {
	_, ok := moderation.ProbeReport{}.Primary()
	assert.False(t, ok)
}
