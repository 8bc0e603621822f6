// Package llm talks to chat completion providers. Every backend turns a Request
// into plain completion text and reports failures as *ProviderError so callers
// can inspect the HTTP status without knowing which SDK produced it.
package llm

import (
	"context"
)

// Provider is a long-lived, stateless completion client shared by all requests.
type Provider interface {
	// Complete sends the request and returns the text of the first choice.
	Complete(ctx context.Context, req Request) (string, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	// System is an optional system prompt.
	System string

	// Messages is the conversation; quiz calls send a single user message.
	Messages []Message

	// MaxTokens bounds the completion length. Zero leaves it to the provider.
	MaxTokens int

	// Temperature controls randomness, 0.0 to 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

// Roles
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt builds the common single-message request.
func UserPrompt(prompt string, maxTokens int, temperature float64) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ModelID returns "func".
func (f ProviderFunc) ModelID() string {
	return "func"
}

func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
