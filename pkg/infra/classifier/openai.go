package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

type moderationsAPI interface {
	New(ctx context.Context, body openai.ModerationNewParams, opts ...option.RequestOption) (*openai.ModerationNewResponse, error)
}

// OpenAIClient scores text with the OpenAI moderation endpoint.
type OpenAIClient struct {
	remote
	moderations moderationsAPI
}

func NewOpenAIClient(apiKey, baseURL string, opts ...Option) *OpenAIClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(reqOpts...)
	return &OpenAIClient{
		remote:      newRemote(ProviderOpenAI, opts...),
		moderations: &cli.Moderations,
	}
}

func (c *OpenAIClient) Classify(ctx context.Context, text string, _ float64) (*Prediction, error) {
	var resp *openai.ModerationNewResponse
	err := c.execute(func() error {
		var err error
		resp, err = c.moderations.New(ctx, openai.ModerationNewParams{
			Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
			Model: openai.ModerationModelOmniModerationLatest,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", ErrFailedUpstreamCall, ctxErr)
			}
			return fmt.Errorf("%w: %w", ErrFailedUpstreamCall, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: openai returned no moderation results", moderation.ErrParse)
	}
	return &Prediction{Provider: ProviderOpenAI, Scores: categoryScores(resp.Results[0].CategoryScores)}, nil
}

func (c *OpenAIClient) Probe(ctx context.Context) error {
	_, err := c.Classify(ctx, probeText, moderation.DefaultSafer)
	return err
}

func categoryScores(s openai.ModerationCategoryScores) map[string]float64 {
	return map[string]float64{
		"harassment":             s.Harassment,
		"harassment/threatening": s.HarassmentThreatening,
		"hate":                   s.Hate,
		"hate/threatening":       s.HateThreatening,
		"illicit":                s.Illicit,
		"illicit/violent":        s.IllicitViolent,
		"self-harm":              s.SelfHarm,
		"self-harm/instructions": s.SelfHarmInstructions,
		"self-harm/intent":       s.SelfHarmIntent,
		"sexual":                 s.Sexual,
		"sexual/minors":          s.SexualMinors,
		"violence":               s.Violence,
		"violence/graphic":       s.ViolenceGraphic,
	}
}
