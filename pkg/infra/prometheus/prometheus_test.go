package prometheus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsAreRegistered(t *testing.T) {
	StrategyAttempts.WithLabelValues("primary_api", OutcomeSuccess).Inc()
	RateLimited.Inc()

	families, err := Gatherer().Gather()
	require.NoError(t, err)
	values := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				values[f.GetName()] += c.GetValue()
			}
		}
	}
	assert.GreaterOrEqual(t, values["moderator_strategy_attempts_total"], 1.0)
	assert.GreaterOrEqual(t, values["moderator_rate_limited_total"], 1.0)
}
