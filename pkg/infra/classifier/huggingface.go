package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/valyala/fastjson"
)

const (
	DefaultHuggingFaceURL = "https://router.huggingface.co/hf-inference/models/unitary/toxic-bert"
	probeText             = "Hello world"
)

type HuggingFaceClient struct {
	remote
	url   string
	token string
}

func NewHuggingFaceClient(url, token string, opts ...Option) *HuggingFaceClient {
	if url == "" {
		url = DefaultHuggingFaceURL
	}
	return &HuggingFaceClient{
		remote: newRemote(ProviderHuggingFace, opts...),
		url:    url,
		token:  strings.TrimSpace(token),
	}
}

func (c *HuggingFaceClient) Classify(ctx context.Context, text string, _ float64) (*Prediction, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal huggingface payload: %w", err)
	}

	var labels []Label
	err = c.execute(func() error {
		body, err := c.do(ctx, http.MethodPost, c.url, payload, map[string]string{
			"Authorization": "Bearer " + c.token,
		})
		if err != nil {
			return err
		}
		labels, err = parseLabels(body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Prediction{Provider: ProviderHuggingFace, Labels: labels}, nil
}

// Probe runs a fixed sentence through the model.
func (c *HuggingFaceClient) Probe(ctx context.Context) error {
	_, err := c.Classify(ctx, probeText, moderation.DefaultSafer)
	return err
}

// parseLabels reads either [[{label,score}]] or [{label,score}].
func parseLabels(body []byte) ([]Label, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %w", moderation.ErrParse, err)
	}
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: labels payload is not an array", moderation.ErrParse)
	}
	if len(items) > 0 && items[0].Type() == fastjson.TypeArray {
		items = items[0].GetArray()
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty label list", moderation.ErrParse)
	}

	labels := make([]Label, 0, len(items))
	for _, item := range items {
		label := item.GetStringBytes("label")
		if label == nil {
			return nil, fmt.Errorf("%w: label entry without a name", moderation.ErrParse)
		}
		labels = append(labels, Label{Label: string(label), Score: item.GetFloat64("score")})
	}
	return labels, nil
}
