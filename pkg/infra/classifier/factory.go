package classifier

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/TextModerator/pkg/config"
	"github.com/NeuralTrust/TextModerator/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=ClientFactory --dir=. --output=./mocks --filename=client_factory_mock.go --case=underscore --with-expecter
type ClientFactory interface {
	Get(provider string) (Client, error)
	// Ordered returns the configured clients following order, skipping unknown names.
	Ordered(order []string) []Client
}

type clientFactory struct {
	clients map[string]Client
}

// NewClientFactory builds one client per provider that has enough configuration to run.
// Each client gets its own circuit breaker.
func NewClientFactory(cfg *config.Config, httpClient httpx.Client, logger *logrus.Logger) ClientFactory {
	clients := make(map[string]Client)

	opts := func(name string) []Option {
		return []Option{
			WithHTTPClient(httpClient),
			WithLogger(logger),
			WithCircuitBreaker(httpx.NewCircuitBreaker(name, cfg.CircuitBreaker.Timeout, cfg.CircuitBreaker.MaxFailures)),
		}
	}

	if cfg.Primary.BaseURL != "" && cfg.Primary.APIName != "" {
		clients[ProviderPrimary] = NewGradioClient(GradioConfig{
			BaseURL:           cfg.Primary.BaseURL,
			APIName:           cfg.Primary.APIName,
			CallPrefix:        cfg.Primary.CallPrefix,
			ReconnectCooldown: cfg.Primary.ReconnectCooldown,
		}, opts(ProviderPrimary)...)
	}
	if strings.TrimSpace(cfg.HuggingFace.Token) != "" {
		clients[ProviderHuggingFace] = NewHuggingFaceClient(cfg.HuggingFace.URL, cfg.HuggingFace.Token, opts(ProviderHuggingFace)...)
	}
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		clients[ProviderOpenAI] = NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, opts(ProviderOpenAI)...)
	}
	if strings.TrimSpace(cfg.Local.URL) != "" {
		clients[ProviderLocal] = NewLocalClient(cfg.Local.URL, opts(ProviderLocal)...)
	}

	for name := range clients {
		logger.WithField("strategy", name).Debug("classifier enabled")
	}

	return &clientFactory{clients: clients}
}

func (f *clientFactory) Get(provider string) (Client, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	if client, ok := f.clients[name]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("classifier %q is not configured", provider)
}

func (f *clientFactory) Ordered(order []string) []Client {
	out := make([]Client, 0, len(order))
	seen := make(map[string]struct{}, len(order))
	for _, name := range order {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if client, ok := f.clients[name]; ok {
			out = append(out, client)
		}
	}
	return out
}
