package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestNormalizeVector(t *testing.T) {
	out := normalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)

	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, normalizeVector(zero))
}

func TestOllamaProvider_Generate(t *testing.T) {
	var got ollamaEmbeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{1, 2, 2}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	resp, err := p.Generate(context.Background(), "Hồ Gươm", TaskRetrievalQuery)

	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, "search_query: Hồ Gươm", got.Prompt)
	assert.InDelta(t, 1.0, magnitude(resp.Embedding.Values), 1e-6)
}

func TestOllamaProvider_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), "x", TaskRetrievalDocument)

	require.Error(t, err)
	assert.True(t, retry.IsRetryable(err))
}

func TestGeminiProvider_Generate(t *testing.T) {
	var got geminiEmbeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"embedding":{"values":[0,5,0]}}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("secret")
	p.Endpoint = srv.URL + "/%s"
	resp, err := p.Generate(context.Background(), "Vịnh Hạ Long", TaskRetrievalDocument)

	require.NoError(t, err)
	assert.Equal(t, TaskRetrievalDocument, got.TaskType)
	assert.Equal(t, Dimensions, got.OutputDimensionality)
	assert.Equal(t, []float32{0, 1, 0}, resp.Embedding.Values)
}

type scriptedProvider struct {
	errs  []error
	calls int
}

func (s *scriptedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	s.calls++
	if s.calls <= len(s.errs) {
		return nil, s.errs[s.calls-1]
	}
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: []float32{1}}}, nil
}

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsed:      time.Second,
	}
}

func TestRetryingProvider_RetriesRateLimit(t *testing.T) {
	inner := &scriptedProvider{errs: []error{
		&retry.StatusError{Provider: "fake", StatusCode: http.StatusTooManyRequests},
	}}
	p := NewRetryingProvider(inner, fastPolicy(), logger.NewNopLogger())

	resp, err := p.Generate(context.Background(), "Đà Lạt", TaskRetrievalQuery)

	require.NoError(t, err)
	assert.Equal(t, []float32{1}, resp.Embedding.Values)
	assert.Equal(t, 2, inner.calls)
}

func TestRetryingProvider_PermanentErrorNotRetried(t *testing.T) {
	inner := &scriptedProvider{errs: []error{
		&retry.StatusError{Provider: "fake", StatusCode: http.StatusBadRequest},
	}}
	p := NewRetryingProvider(inner, fastPolicy(), logger.NewNopLogger())

	_, err := p.Generate(context.Background(), "Đà Lạt", TaskRetrievalQuery)

	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.False(t, errors.Is(err, retry.ErrProviderUnavailable))
}

func TestRetryingProvider_ExhaustionIsProviderUnavailable(t *testing.T) {
	unavailable := &retry.StatusError{Provider: "fake", StatusCode: http.StatusServiceUnavailable}
	inner := &scriptedProvider{errs: []error{unavailable, unavailable, unavailable, unavailable}}
	p := NewRetryingProvider(inner, fastPolicy(), logger.NewNopLogger())

	_, err := p.Generate(context.Background(), "Huế", TaskRetrievalQuery)

	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrProviderUnavailable)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingProvider_RejectsEmptyInput(t *testing.T) {
	inner := &scriptedProvider{}
	p := NewRetryingProvider(inner, fastPolicy(), logger.NewNopLogger())

	_, err := p.Generate(context.Background(), "   ", TaskRetrievalQuery)

	require.Error(t, err)
	assert.Zero(t, inner.calls)
}

func TestNewEmbeddingProvider(t *testing.T) {
	for _, name := range []string{"ollama", "gemini", "openai"} {
		p, err := NewEmbeddingProvider(name, "", "", "key")
		require.NoError(t, err, name)
		assert.NotNil(t, p)
	}

	_, err := NewEmbeddingProvider("jina", "", "", "")
	assert.Error(t, err)
}
