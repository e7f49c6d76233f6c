package classifier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultGradioCallPrefix  = "/gradio_api/call"
	DefaultReconnectCooldown = 30 * time.Second

	sseEventComplete = "complete"
	sseEventError    = "error"
	parseErrorText   = "Could not parse JSON"
)

type GradioConfig struct {
	BaseURL           string
	APIName           string
	CallPrefix        string
	ReconnectCooldown time.Duration
}

// GradioClient talks to a hosted Gradio Space through its queue based call API.
type GradioClient struct {
	remote
	cfg GradioConfig

	mu          sync.Mutex
	connected   bool
	lastAttempt time.Time
	sf          singleflight.Group
}

func NewGradioClient(cfg GradioConfig, opts ...Option) *GradioClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.APIName = strings.TrimPrefix(cfg.APIName, "/")
	if cfg.CallPrefix == "" {
		cfg.CallPrefix = DefaultGradioCallPrefix
	}
	if cfg.ReconnectCooldown <= 0 {
		cfg.ReconnectCooldown = DefaultReconnectCooldown
	}
	return &GradioClient{
		remote: newRemote(ProviderPrimary, opts...),
		cfg:    cfg,
	}
}

func (c *GradioClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect checks the Space configuration and marks the client connected when the
// configured api is exposed.
func (c *GradioClient) Connect(ctx context.Context) error {
	_, err, _ := c.sf.Do("connect", func() (interface{}, error) {
		c.mu.Lock()
		c.lastAttempt = c.now()
		c.mu.Unlock()

		err := c.execute(func() error {
			return c.checkConfig(ctx)
		})

		c.mu.Lock()
		c.connected = err == nil
		c.mu.Unlock()
		if err != nil {
			c.logger.WithFields(c.logFields()).WithError(err).Warn("primary moderation api connection failed")
			return nil, err
		}
		c.logger.WithFields(c.logFields()).Info("connected to primary moderation api")
		return nil, nil
	})
	return err
}

func (c *GradioClient) checkConfig(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/config", nil, nil)
	if err != nil {
		return err
	}
	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return fmt.Errorf("%w: config: %w", moderation.ErrParse, err)
	}
	for _, dep := range v.GetArray("dependencies") {
		if strings.TrimPrefix(string(dep.GetStringBytes("api_name")), "/") == c.cfg.APIName {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrContractMismatch, c.cfg.APIName)
}

// ensureConnected reconnects a disconnected client at most once per cooldown.
func (c *GradioClient) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	connected := c.connected
	waiting := !c.lastAttempt.IsZero() && c.now().Sub(c.lastAttempt) < c.cfg.ReconnectCooldown
	c.mu.Unlock()
	if connected {
		return nil
	}
	if waiting {
		return ErrNotConnected
	}
	return c.Connect(ctx)
}

func (c *GradioClient) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *GradioClient) Probe(ctx context.Context) error {
	return c.Connect(ctx)
}

func (c *GradioClient) Classify(ctx context.Context, text string, safer float64) (*Prediction, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	var prediction *Prediction
	err := c.execute(func() error {
		var err error
		prediction, err = c.call(ctx, text, safer)
		return err
	})
	if err != nil {
		if !errors.Is(err, moderation.ErrParse) {
			c.markDisconnected()
		}
		return nil, err
	}
	return prediction, nil
}

func (c *GradioClient) call(ctx context.Context, text string, safer float64) (*Prediction, error) {
	payload, err := json.Marshal(map[string]any{"data": []any{text, safer}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gradio payload: %w", err)
	}
	endpoint := c.cfg.BaseURL + c.cfg.CallPrefix + "/" + c.cfg.APIName

	body, err := c.do(ctx, http.MethodPost, endpoint, payload, nil)
	if err != nil {
		return nil, err
	}
	var event struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(body, &event); err != nil || event.EventID == "" {
		return nil, fmt.Errorf("%w: missing event_id", moderation.ErrParse)
	}

	stream, err := c.do(ctx, http.MethodGet, endpoint+"/"+event.EventID, nil, map[string]string{
		"Accept": "text/event-stream",
	})
	if err != nil {
		return nil, err
	}
	data, err := readCompleteEvent(stream)
	if err != nil {
		return nil, err
	}
	return parseGradioOutput(data)
}

// readCompleteEvent returns the data of the first complete event in an SSE stream.
func readCompleteEvent(stream []byte) ([]byte, error) {
	scanner := bufio.NewScanner(bytes.NewReader(stream))
	scanner.Buffer(make([]byte, 0, 64*1024), len(stream)+1)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case sseEventComplete:
				return []byte(data), nil
			case sseEventError:
				return nil, fmt.Errorf("%w: gradio error event: %s",
					ErrFailedUpstreamCall, moderation.Truncate(data, maxErrorBody))
			}
		case line == "":
			event = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read gradio stream: %w", err)
	}
	return nil, fmt.Errorf("%w: stream ended without a complete event", ErrFailedUpstreamCall)
}

// parseGradioOutput accepts exactly [chart_data, analysis]. The analysis may arrive as an
// object or as a JSON encoded string.
func parseGradioOutput(data []byte) (*Prediction, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: gradio output: %w", moderation.ErrParse, err)
	}
	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: gradio output is not an array", moderation.ErrParse)
	}
	if len(items) != 2 {
		return nil, fmt.Errorf("%w: gradio output has %d elements, want 2", moderation.ErrParse, len(items))
	}

	return &Prediction{
		Provider:  ProviderPrimary,
		ChartData: json.RawMessage(items[0].MarshalTo(nil)),
		Analysis:  analysisObject(items[1]),
	}, nil
}

func analysisObject(v *fastjson.Value) json.RawMessage {
	switch v.Type() {
	case fastjson.TypeObject:
		return json.RawMessage(v.MarshalTo(nil))
	case fastjson.TypeString:
		raw := string(v.GetStringBytes())
		var p fastjson.Parser
		if parsed, err := p.Parse(raw); err == nil && parsed.Type() == fastjson.TypeObject {
			return json.RawMessage(parsed.MarshalTo(nil))
		}
		return unparsedAnalysis(raw)
	default:
		return unparsedAnalysis(string(v.MarshalTo(nil)))
	}
}

func unparsedAnalysis(raw string) json.RawMessage {
	out, _ := json.Marshal(map[string]string{ //nolint:errcheck
		"raw_output":  raw,
		"parse_error": parseErrorText,
	})
	return out
}

func (c *GradioClient) logFields() logrus.Fields {
	return logrus.Fields{"strategy": c.name, "api": c.cfg.APIName}
}
