package factory

import (
	"fmt"

	"discharge-assistant-be/pkg/llm"
	"discharge-assistant-be/pkg/llm/ollama"
	"discharge-assistant-be/pkg/llm/openai"
)

// NewLLMProvider builds the chat backend. baseURL may be empty to use the
// provider default; apiKey is ignored by ollama.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		return ollama.NewOllamaProvider(baseURL, modelName)
	case "openai", "groq":
		return openai.NewProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
