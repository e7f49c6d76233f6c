package classifier

import (
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

// Option configures the transport shared by every remote client.
type Option func(*remote)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client httpx.Client) Option {
	return func(r *remote) {
		if client != nil {
			r.client = client
		}
	}
}

// WithCircuitBreaker wraps every upstream call in breaker.
func WithCircuitBreaker(breaker httpx.CircuitBreaker) Option {
	return func(r *remote) {
		r.breaker = breaker
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(r *remote) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock replaces time.Now, used by the reconnect cooldown.
func WithClock(now func() time.Time) Option {
	return func(r *remote) {
		if now != nil {
			r.now = now
		}
	}
}
