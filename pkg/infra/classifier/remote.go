package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const maxErrorBody = 200

// remote holds the plumbing shared by every HTTP classifier.
type remote struct {
	name    string
	client  httpx.Client
	breaker httpx.CircuitBreaker
	logger  *logrus.Logger
	now     func() time.Time
}

func newRemote(name string, opts ...Option) remote {
	r := remote{
		name:   name,
		client: httpx.NewFastHTTPClient(),
		logger: logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r *remote) Name() string {
	return r.name
}

func (r *remote) CircuitState() string {
	if r.breaker == nil {
		return httpx.StateClosed
	}
	return r.breaker.State()
}

func (r *remote) execute(fn func() error) error {
	if r.breaker == nil {
		return fn()
	}
	return r.breaker.Execute(fn)
}

// do sends a request and returns the body of a 2xx response.
func (r *remote) do(ctx context.Context, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", r.name, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.WithError(err).WithField("strategy", r.name).Debug("upstream request failed")
		}
		return nil, fmt.Errorf("failed to call %s: %w", r.name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s response read error: %w", r.name, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.logger.WithFields(logrus.Fields{
			"strategy":    r.name,
			"status_code": resp.StatusCode,
		}).Warn("upstream returned non-2xx status")
		return nil, fmt.Errorf("%w: status %d: %s",
			ErrFailedUpstreamCall, resp.StatusCode, moderation.Truncate(string(payload), maxErrorBody))
	}
	return payload, nil
}
