package llm

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/company-enricher/internal/model"
)

// Provider names accepted by New.
const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

// Options selects and configures a provider.
type Options struct {
	Provider        string
	OpenRouterKey   string
	OpenRouterURL   string
	AnthropicKey    string
	AnthropicURL    string
	Settings        Settings
	Timeout         time.Duration
	Retry           RetryPolicy
	AttributionURL  string
	AttributionName string
}

// New builds the configured provider wrapped in a RetryingClient.
func New(opts Options, logger *zap.Logger) (*RetryingClient, error) {
	var (
		client Client
		err    error
	)

	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderOpenRouter:
		client, err = NewOpenRouterClient(OpenRouterOptions{
			APIKey:   opts.OpenRouterKey,
			BaseURL:  opts.OpenRouterURL,
			Settings: opts.Settings,
			Timeout:  opts.Timeout,
			Referer:  opts.AttributionURL,
			Title:    opts.AttributionName,
		})
	case ProviderAnthropic:
		client, err = NewAnthropicClient(AnthropicOptions{
			APIKey:   opts.AnthropicKey,
			BaseURL:  opts.AnthropicURL,
			Settings: opts.Settings,
			Timeout:  opts.Timeout,
		})
	default:
		return nil, &model.ConfigurationError{Message: fmt.Sprintf("unknown model provider %q", opts.Provider)}
	}
	if err != nil {
		return nil, err
	}

	logger.Info("model client configured",
		zap.String("provider", client.ProviderName()),
		zap.String("model", client.ModelName()),
	)
	return NewRetryingClient(client, opts.Retry, logger), nil
}
