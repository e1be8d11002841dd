package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fleveque/company-enricher/internal/model"
)

// DefaultOpenRouterURL is the OpenAI-compatible endpoint used by default.
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// OpenRouterOptions configures an OpenRouterClient.
type OpenRouterOptions struct {
	APIKey   string
	BaseURL  string
	Settings Settings
	Timeout  time.Duration
	Referer  string // sent as HTTP-Referer
	Title    string // sent as X-Title
}

// OpenRouterClient implements Client on top of go-openai. OpenRouter speaks
// the OpenAI chat-completions protocol, so only the base URL and two
// attribution headers differ from talking to OpenAI directly.
type OpenRouterClient struct {
	client   *openai.Client
	settings Settings
}

// NewOpenRouterClient creates a client. A missing key is a ConfigurationError.
func NewOpenRouterClient(opts OpenRouterOptions) (*OpenRouterClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, &model.ConfigurationError{Message: "model API key is required (OPENROUTER_API_KEY)"}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenRouterURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	cfg.HTTPClient = &http.Client{
		Timeout: opts.Timeout,
		Transport: &attributionTransport{
			base:    http.DefaultTransport,
			referer: opts.Referer,
			title:   opts.Title,
		},
	}

	return &OpenRouterClient{
		client:   openai.NewClientWithConfig(cfg),
		settings: opts.Settings,
	}, nil
}

func (o *OpenRouterClient) ProviderName() string { return "openrouter" }
func (o *OpenRouterClient) ModelName() string    { return o.settings.Model }

func (o *OpenRouterClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := validateMessages(messages); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model:       o.settings.Model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: float32(o.settings.Temperature),
		MaxTokens:   o.settings.MaxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(o.ProviderName(), err)
	}

	if len(resp.Choices) == 0 {
		return "", model.NewMalformedError(o.ProviderName(), "response contained no choices", nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", model.NewMalformedError(o.ProviderName(), "response contained empty content", nil)
	}
	return content, nil
}

// classifyOpenAIError maps go-openai's error types onto model.APIError.
// APIError carries a decoded error body, RequestError a status without one;
// JSON errors mean a 2xx whose body we could not read.
func classifyOpenAIError(service string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return model.NewStatusError(service, apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return model.NewStatusError(service, reqErr.HTTPStatusCode, reqErr.Error())
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return model.NewMalformedError(service, "failed to decode response", err)
	}

	return model.NewTransportError(service, err)
}

// attributionTransport adds the OpenRouter app attribution headers to every
// request. go-openai has no per-request header hook, so this is done at the
// transport layer.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer == "" && t.title == "" {
		return t.base.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	if t.referer != "" {
		clone.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		clone.Header.Set("X-Title", t.title)
	}
	return t.base.RoundTrip(clone)
}
