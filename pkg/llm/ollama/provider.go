package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"discharge-assistant-be/pkg/llm"

	"github.com/ollama/ollama/api"
)

const DefaultBaseURL = "http://localhost:11434"

// OllamaProvider talks to a local Ollama server's chat endpoint.
type OllamaProvider struct {
	BaseURL   string
	ModelName string

	client *api.Client
}

var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", baseURL, err)
	}
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		client:    api.NewClient(u, &http.Client{Timeout: 120 * time.Second}),
	}, nil
}

func toOllamaRole(role string) string {
	if role == "model" {
		return "assistant"
	}
	return role
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{Model: o.ModelName}, opts...)

	messages := make([]api.Message, len(history))
	for i, msg := range history {
		messages[i] = api.Message{Role: toOllamaRole(msg.Role), Content: msg.Content}
	}

	modelOptions := map[string]any{"temperature": options.TemperatureOr(0.7)}
	if options.MaxTokens > 0 {
		modelOptions["num_predict"] = options.MaxTokens
	}

	stream := false
	var reply strings.Builder
	err := o.client.Chat(ctx, &api.ChatRequest{
		Model:    options.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  modelOptions,
	}, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat (%s): %w", options.Model, err)
	}
	return reply.String(), nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
