// Package llm provides a provider-agnostic interface for chat-completion
// models. The enrichment pipelines only need "send these messages, get text
// back", so both OpenRouter (via the OpenAI-compatible API) and Anthropic
// sit behind the same small interface and can be swapped by config.
package llm

import (
	"context"
	"strings"

	"github.com/fleveque/company-enricher/internal/model"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// System and User are shorthands for building conversations.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }

// Client is the interface every model provider implements.
//
// Complete returns the text of the first choice. Failures are always a
// *model.APIError (or *model.ValidationError for bad input), so callers can
// decide whether a retry makes sense by looking at the kind.
//
// Go interface design tip: keep interfaces small. Retry, auditing and tests
// all wrap or fake this one method.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	ProviderName() string
	ModelName() string
}

// Settings are the generation parameters shared by all providers.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

func validateMessages(messages []Message) error {
	if len(messages) == 0 {
		return &model.ValidationError{Field: "messages", Message: "at least one message is required"}
	}
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			return &model.ValidationError{Field: "messages", Message: "message content must not be empty"}
		}
	}
	return nil
}
