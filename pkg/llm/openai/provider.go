package openai

import (
	"context"
	"errors"
	"fmt"

	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/retry"

	goopenai "github.com/sashabaranov/go-openai"
)

// Provider talks to any OpenAI-compatible chat completion endpoint
// (OpenAI, Hugging Face router, vLLM, LM Studio).
type Provider struct {
	client *goopenai.Client
	model  string
}

var _ llm.LLMProvider = (*Provider)(nil)

func NewProvider(apiKey, baseURL, model string) *Provider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.ApplyOptions(0.7, options...)

	model := p.model
	if opts.Model != "" {
		model = opts.Model
	}

	messages := make([]goopenai.ChatCompletionMessage, len(history))
	for i, msg := range history {
		messages[i] = goopenai.ChatCompletionMessage{
			Role:    llm.NormalizeRole(msg.Role),
			Content: msg.Content,
		}
	}

	req := goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		req.MaxCompletionTokens = opts.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", MapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

// MapError turns go-openai API errors into retry.StatusError so the retry policy can classify them.
func MapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return fmt.Errorf("openai: %w", &retry.StatusError{
			Provider:   "openai",
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
		})
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return fmt.Errorf("openai: %w", &retry.StatusError{
			Provider:   "openai",
			StatusCode: reqErr.HTTPStatusCode,
			Body:       reqErr.Error(),
		})
	}
	return fmt.Errorf("openai request failed: %w", err)
}
