package embedding

import "fmt"

// NewEmbeddingProvider picks the backend named by providerType.
func NewEmbeddingProvider(providerType, model, baseURL, apiKey string) (EmbeddingProvider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(baseURL, model), nil
	case "gemini":
		p := NewGeminiProvider(apiKey)
		if model != "" {
			p.Model = model
		}
		return p, nil
	case "openai":
		return NewOpenAIProvider(apiKey, baseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
