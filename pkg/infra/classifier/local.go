package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	localPredictPath = "/predict"
	localHealthPath  = "/health"
)

// LocalClient calls a co-located text-embeddings-inference server hosting toxic-bert.
type LocalClient struct {
	remote
	baseURL string
}

func NewLocalClient(baseURL string, opts ...Option) *LocalClient {
	return &LocalClient{
		remote:  newRemote(ProviderLocal, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *LocalClient) Classify(ctx context.Context, text string, _ float64) (*Prediction, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal local payload: %w", err)
	}

	var labels []Label
	err = c.execute(func() error {
		body, err := c.do(ctx, http.MethodPost, c.baseURL+localPredictPath, payload, nil)
		if err != nil {
			return err
		}
		labels, err = parseLabels(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Prediction{Provider: ProviderLocal, Labels: labels}, nil
}

func (c *LocalClient) Probe(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, c.baseURL+localHealthPath, nil, nil)
	return err
}
