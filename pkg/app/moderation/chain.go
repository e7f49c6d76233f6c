package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	DefaultStrategyTimeout = 30 * time.Second
	maxLoggedError         = 200
)

//go:generate mockery --name=Moderator --dir=. --output=./mocks --filename=moderator_mock.go --case=underscore --with-expecter
type Moderator interface {
	Classify(ctx context.Context, req *domain.Request) (*domain.Result, error)
	// Strategies lists the upstream strategies in order, without the keyword fallback.
	Strategies() []Strategy
	Strict() bool
}

type ChainConfig struct {
	Strict          bool
	StrategyTimeout time.Duration
}

type chain struct {
	logger     *logrus.Logger
	strategies []Strategy
	heuristic  Strategy
	cfg        ChainConfig
}

func NewChain(logger *logrus.Logger, strategies []Strategy, cfg ChainConfig) Moderator {
	if cfg.StrategyTimeout <= 0 {
		cfg.StrategyTimeout = DefaultStrategyTimeout
	}
	return &chain{
		logger:     logger,
		strategies: strategies,
		heuristic:  NewHeuristicStrategy(),
		cfg:        cfg,
	}
}

func (c *chain) Strategies() []Strategy {
	return c.strategies
}

func (c *chain) Strict() bool {
	return c.cfg.Strict
}

func (c *chain) steps() []Strategy {
	if c.cfg.Strict {
		return c.strategies
	}
	steps := make([]Strategy, 0, len(c.strategies)+1)
	steps = append(steps, c.strategies...)
	return append(steps, c.heuristic)
}

// Classify tries each strategy in order and returns the first success.
func (c *chain) Classify(ctx context.Context, req *domain.Request) (*domain.Result, error) {
	fields := logrus.Fields{
		"client":      domain.MaskClientID(req.ClientID),
		"text_length": req.Length(),
	}

	var lastErr error
	for i, strategy := range c.steps() {
		result, err := c.attempt(ctx, strategy, req)
		if err == nil {
			result.Fallback = i > 0
			c.logger.WithFields(fields).WithFields(logrus.Fields{
				"strategy": strategy.Name(),
				"fallback": result.Fallback,
				"flagged":  result.IsFlagged,
			}).Info("text analyzed")
			return result, nil
		}

		lastErr = err
		c.logger.WithFields(fields).WithFields(logrus.Fields{
			"strategy": strategy.Name(),
			"error":    domain.Truncate(err.Error(), maxLoggedError),
		}).Warn("moderation strategy failed")
	}

	if lastErr == nil {
		lastErr = errors.New("no moderation strategy configured")
	}
	c.logger.WithFields(fields).Error("all moderation strategies failed")
	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, domain.NewTimeoutError(lastErr.Error())
	}
	return nil, domain.NewUnavailableError(lastErr.Error())
}

func (c *chain) attempt(ctx context.Context, strategy Strategy, req *domain.Request) (*domain.Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.StrategyTimeout)
	defer cancel()

	start := time.Now()
	result, err := strategy.Classify(attemptCtx, req.Text, req.Safer)
	prometheus.StrategyLatency.WithLabelValues(strategy.Name()).Observe(float64(time.Since(start).Milliseconds()))

	if err == nil && result == nil {
		err = fmt.Errorf("%w: %s returned no result", domain.ErrInternal, strategy.Name())
	}

	switch {
	case err == nil:
		prometheus.StrategyAttempts.WithLabelValues(strategy.Name(), prometheus.OutcomeSuccess).Inc()
	case errors.Is(err, context.DeadlineExceeded):
		prometheus.StrategyAttempts.WithLabelValues(strategy.Name(), prometheus.OutcomeTimeout).Inc()
	default:
		prometheus.StrategyAttempts.WithLabelValues(strategy.Name(), prometheus.OutcomeFailure).Inc()
	}
	if err != nil {
		return nil, err
	}

	if result.Method == "" {
		result.Method = strategy.Name()
	}
	return result, nil
}
