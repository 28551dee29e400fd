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

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent"

type geminiContentPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiContentPart `json:"parts"`
}

type geminiEmbeddingRequest struct {
	Model                string        `json:"model"`
	Content              geminiContent `json:"content"`
	TaskType             string        `json:"task_type,omitempty"`
	OutputDimensionality int           `json:"output_dimensionality,omitempty"`
}

type GeminiProvider struct {
	ApiKey   string
	Model    string
	Endpoint string
	Client   *http.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey:   apiKey,
		Model:    "text-embedding-004",
		Endpoint: geminiEndpoint,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	geminiReq := geminiEmbeddingRequest{
		Model: "models/" + p.Model,
		Content: geminiContent{
			Parts: []geminiContentPart{{Text: text}},
		},
		TaskType:             taskType,
		OutputDimensionality: Dimensions,
	}
	geminiReqJson, err := json.Marshal(geminiReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(p.Endpoint, p.Model), bytes.NewBuffer(geminiReqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{Provider: "gemini", StatusCode: res.StatusCode, Body: string(resByte)}
	}

	var resEmbedding EmbeddingResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}
	resEmbedding.Embedding.Values = normalizeVector(resEmbedding.Embedding.Values)

	return &resEmbedding, nil
}
