package llm

import (
	"context"
	"time"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/retry"
)

// RetryingProvider wraps an LLMProvider with an explicit retry policy.
type RetryingProvider struct {
	inner  LLMProvider
	policy retry.Policy
	logger logger.ILogger
}

var _ LLMProvider = (*RetryingProvider)(nil)

func NewRetryingProvider(inner LLMProvider, policy retry.Policy, log logger.ILogger) *RetryingProvider {
	return &RetryingProvider{inner: inner, policy: policy, logger: log}
}

func (p *RetryingProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	policy := p.policy
	policy.OnRetry = func(err error, wait time.Duration) {
		p.logger.Warn("LLM", "Chat call failed, retrying", map[string]interface{}{
			"error": err.Error(),
			"wait":  wait.String(),
		})
	}
	return retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		return p.inner.Chat(ctx, history, options...)
	})
}

func (p *RetryingProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
}
