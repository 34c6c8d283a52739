package embedding

import "fmt"

// NewProvider selects the embedding backend by name.
func NewProvider(kind, model, ollamaBaseURL, geminiKey string) (EmbeddingProvider, error) {
	switch kind {
	case "", "ollama":
		return NewOllamaProvider(ollamaBaseURL, model)
	case "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires GOOGLE_GEMINI_API_KEY")
		}
		return NewGeminiProvider(geminiKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", kind)
	}
}
