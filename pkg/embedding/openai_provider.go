package embedding

import (
	"context"
	"fmt"

	"travel-chatbot-be/pkg/llm/openai"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider embeds through any OpenAI-compatible /embeddings endpoint.
type OpenAIProvider struct {
	client *goopenai.Client
	model  goopenai.EmbeddingModel
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(goopenai.SmallEmbedding3)
	}
	return &OpenAIProvider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  goopenai.EmbeddingModel(model),
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	resp, err := p.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:      []string{text},
		Model:      p.model,
		Dimensions: Dimensions,
	})
	if err != nil {
		return nil, openai.MapError(err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embeddings")
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: normalizeVector(resp.Data[0].Embedding),
		},
	}, nil
}
