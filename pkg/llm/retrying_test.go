package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyProvider struct {
	failures int
	status   int
	calls    int
	lastOpts *Options
}

func (f *flakyProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	f.calls++
	f.lastOpts = ApplyOptions(0.7, options...)
	if f.calls <= f.failures {
		return "", &retry.StatusError{Provider: "fake", StatusCode: f.status}
	}
	return "answer", nil
}

func (f *flakyProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return f.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
}

func testPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxElapsed:      time.Second,
	}
}

func TestRetryingProvider_RecoversFromRateLimit(t *testing.T) {
	inner := &flakyProvider{failures: 2, status: http.StatusTooManyRequests}
	p := NewRetryingProvider(inner, testPolicy(), logger.NewNopLogger())

	out, err := p.Generate(context.Background(), "hello", WithTemperature(0.2))

	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, 3, inner.calls)
	require.NotNil(t, inner.lastOpts.Temperature)
	assert.Equal(t, 0.2, *inner.lastOpts.Temperature)
}

func TestRetryingProvider_SurfacesProviderUnavailable(t *testing.T) {
	inner := &flakyProvider{failures: 10, status: http.StatusServiceUnavailable}
	p := NewRetryingProvider(inner, testPolicy(), logger.NewNopLogger())

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, retry.ErrProviderUnavailable))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingProvider_DoesNotRetryClientErrors(t *testing.T) {
	inner := &flakyProvider{failures: 10, status: http.StatusUnauthorized}
	p := NewRetryingProvider(inner, testPolicy(), logger.NewNopLogger())

	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})

	require.Error(t, err)
	assert.False(t, errors.Is(err, retry.ErrProviderUnavailable))
	assert.Equal(t, 1, inner.calls)
}

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleAssistant, NormalizeRole("model"))
	assert.Equal(t, RoleAssistant, NormalizeRole("assistant"))
	assert.Equal(t, RoleSystem, NormalizeRole("system"))
	assert.Equal(t, RoleUser, NormalizeRole("user"))
	assert.Equal(t, RoleUser, NormalizeRole(""))
}
