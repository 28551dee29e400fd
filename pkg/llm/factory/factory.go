package factory

import (
	"fmt"

	"travel-chatbot-be/pkg/llm"
	"travel-chatbot-be/pkg/llm/ollama"
	"travel-chatbot-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai", "huggingface":
		if providerType == "huggingface" && baseURL == "" {
			baseURL = "https://router.huggingface.co/v1"
		}
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
