package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/retry"
)

// RetryingProvider retries transient embedding failures (rate limits, timeouts, 5xx).
type RetryingProvider struct {
	inner  EmbeddingProvider
	policy retry.Policy
	logger logger.ILogger
}

var _ EmbeddingProvider = (*RetryingProvider)(nil)

func NewRetryingProvider(inner EmbeddingProvider, policy retry.Policy, log logger.ILogger) *RetryingProvider {
	return &RetryingProvider{inner: inner, policy: policy, logger: log}
}

func (p *RetryingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	policy := p.policy
	policy.OnRetry = func(err error, wait time.Duration) {
		p.logger.Warn("EMBEDDING", "Embedding call failed, retrying", map[string]interface{}{
			"error":     err.Error(),
			"wait":      wait.String(),
			"task_type": taskType,
		})
	}

	return retry.Do(ctx, policy, func(ctx context.Context) (*EmbeddingResponse, error) {
		return p.inner.Generate(ctx, text, taskType)
	})
}
