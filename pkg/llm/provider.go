package llm

import (
	"context"
	"errors"
)

// Roles used across providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrMalformedOutput marks model output that could not be parsed into the expected verdict.
var ErrMalformedOutput = errors.New("malformed model output")

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature *float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = &temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// ApplyOptions folds opts over a default temperature.
func ApplyOptions(defaultTemperature float64, opts ...Option) *Options {
	options := &Options{Temperature: &defaultTemperature}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// NormalizeRole maps storage roles onto chat roles.
func NormalizeRole(role string) string {
	switch role {
	case "model", "bot", RoleAssistant:
		return RoleAssistant
	case RoleSystem:
		return RoleSystem
	default:
		return RoleUser
	}
}
