package moderation

import (
	"context"
	"sync"
	"time"

	domain "github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/infra/cache"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"

	DefaultProbeTimeout = 10 * time.Second
	probeCacheKey       = "probe"
)

// StrategyStatus is the reachability of one strategy at a point in time.
type StrategyStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Circuit string `json:"circuit"`
}

func (s StrategyStatus) Available() bool {
	return s.Status == StatusAvailable
}

type ProbeReport struct {
	Strategies []StrategyStatus `json:"strategies"`
	CheckedAt  time.Time        `json:"checked_at"`
}

// Primary returns the status of the first strategy, the one every request tries first.
func (r ProbeReport) Primary() (StrategyStatus, bool) {
	if len(r.Strategies) == 0 {
		return StrategyStatus{}, false
	}
	return r.Strategies[0], true
}

//go:generate mockery --name=Prober --dir=. --output=./mocks --filename=prober_mock.go --case=underscore --with-expecter
type Prober interface {
	// Probe returns the cached report while it is fresh.
	Probe(ctx context.Context) ProbeReport
	// Force probes every strategy regardless of the cache.
	Force(ctx context.Context) ProbeReport
}

type prober struct {
	logger     *logrus.Logger
	strategies []Strategy
	cache      *cache.TTLMap[ProbeReport]
	timeout    time.Duration
	now        func() time.Time
	mu         sync.Mutex
}

func NewProber(logger *logrus.Logger, strategies []Strategy, cacheTTL time.Duration) Prober {
	return &prober{
		logger:     logger,
		strategies: strategies,
		cache:      cache.NewTTLMap[ProbeReport](cacheTTL),
		timeout:    DefaultProbeTimeout,
		now:        time.Now,
	}
}

func (p *prober) Probe(ctx context.Context) ProbeReport {
	if report, ok := p.cache.Get(probeCacheKey); ok {
		return report
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if report, ok := p.cache.Get(probeCacheKey); ok {
		return report
	}
	return p.run(ctx)
}

func (p *prober) Force(ctx context.Context) ProbeReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.run(ctx)
}

func (p *prober) run(ctx context.Context) ProbeReport {
	statuses := make([]StrategyStatus, len(p.strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, strategy := range p.strategies {
		i, strategy := i, strategy
		g.Go(func() error {
			statuses[i] = p.probeOne(gctx, strategy)
			return nil
		})
	}
	_ = g.Wait()

	report := ProbeReport{Strategies: statuses, CheckedAt: p.now().UTC()}
	p.cache.Set(probeCacheKey, report)
	return report
}

func (p *prober) probeOne(ctx context.Context, strategy Strategy) StrategyStatus {
	status := StrategyStatus{Name: strategy.Name(), Status: StatusAvailable, Circuit: httpx.StateClosed}

	if probeable, ok := strategy.(Probeable); ok {
		probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := probeable.Probe(probeCtx)
		cancel()
		if err != nil {
			status.Status = StatusUnavailable
			status.Error = domain.Truncate(err.Error(), maxLoggedError)
			p.logger.WithFields(logrus.Fields{
				"strategy": strategy.Name(),
				"error":    status.Error,
			}).Warn("strategy probe failed")
		}
	}

	if reporter, ok := strategy.(interface{ CircuitState() string }); ok {
		status.Circuit = reporter.CircuitState()
	}
	return status
}
