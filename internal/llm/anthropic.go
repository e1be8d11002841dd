package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/fleveque/company-enricher/internal/model"
)

// AnthropicOptions configures an AnthropicClient.
type AnthropicOptions struct {
	APIKey   string
	BaseURL  string // empty uses the SDK default
	Settings Settings
	Timeout  time.Duration
}

// AnthropicClient implements Client using Claude's Messages API.
//
// The SDK has its own retry loop; it is switched off so RetryingClient is
// the only place attempts are counted.
type AnthropicClient struct {
	client   *anthropic.Client
	settings Settings
}

// NewAnthropicClient creates a Claude-backed client.
func NewAnthropicClient(opts AnthropicOptions) (*AnthropicClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, &model.ConfigurationError{Message: "model API key is required (ANTHROPIC_API_KEY)"}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(opts.Timeout),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropic.NewClient(reqOpts...)
	return &AnthropicClient{
		client:   &client,
		settings: opts.Settings,
	}, nil
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string    { return a.settings.Model }

func (a *AnthropicClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	// Claude takes the system prompt as a separate parameter rather than as
	// a message in the conversation.
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if len(turns) == 0 {
		return "", &model.ValidationError{Field: "messages", Message: "at least one user message is required"}
	}

	maxTokens := int64(a.settings.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.settings.Model),
		MaxTokens:   maxTokens,
		Messages:    turns,
		System:      system,
		Temperature: anthropic.Float(a.settings.Temperature),
	})
	if err != nil {
		return "", classifyAnthropicError(a.ProviderName(), err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", model.NewMalformedError(a.ProviderName(), "response contained no text content", nil)
	}
	return content, nil
}

func classifyAnthropicError(service string, err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return model.NewStatusError(service, apiErr.StatusCode, apiErr.Error())
	}
	return model.NewTransportError(service, err)
}
