package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"travel-chatbot-be/pkg/retry"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL string
	Model   string
	Client  *http.Client
}

func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL: baseURL,
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// nomic-embed-text expects task prefixes instead of a task type field.
func ollamaPrefix(taskType string) string {
	switch taskType {
	case TaskRetrievalQuery:
		return "search_query: "
	case TaskRetrievalDocument:
		return "search_document: "
	default:
		return ""
	}
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	reqBody := ollamaEmbeddingRequest{
		Model:  p.Model,
		Prompt: ollamaPrefix(taskType) + text,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/embeddings", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{Provider: "ollama-embedding", StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return nil, err
	}
	if len(ollamaResp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}

	values := make([]float32, len(ollamaResp.Embedding))
	for i, v := range ollamaResp.Embedding {
		values[i] = float32(v)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: normalizeVector(values),
		},
	}, nil
}
