package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/config"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	DefaultRequests = 20
	DefaultWindow   = time.Hour
)

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long the client should wait before its next request is admitted.
	RetryAfter time.Duration
	// Reset is when the current window ends for this client.
	Reset time.Time
}

// Limiter admits or rejects requests per client. When an error is returned the Decision
// still says whether the request should go through.
//
//go:generate mockery --name=Limiter --dir=. --output=./mocks --filename=limiter_mock.go --case=underscore --with-expecter
type Limiter interface {
	Allow(ctx context.Context, clientID string) (Decision, error)
}

// NewLimiter picks the backend named in cfg. redisClient is only used by the redis backend.
func NewLimiter(cfg config.RateLimitConfig, redisClient *redis.Client, logger *logrus.Logger) (Limiter, error) {
	requests := cfg.Requests
	if requests <= 0 {
		requests = DefaultRequests
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemoryLimiter(requests, window), nil
	case BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("rate limit backend %q requires a redis client", BackendRedis)
		}
		return NewRedisLimiter(redisClient, requests, window, logger), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend: %s", cfg.Backend)
	}
}
