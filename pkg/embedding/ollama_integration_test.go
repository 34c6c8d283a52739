package embedding

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbeddingIntegration(t *testing.T) {
	baseURL := os.Getenv("OLLAMA_TEST_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_TEST_URL not set")
	}
	model := os.Getenv("OLLAMA_TEST_EMBED_MODEL")
	if model == "" {
		model = "nomic-embed-text"
	}

	p, err := NewOllamaProvider(baseURL, model)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	vecs, err := p.GenerateBatch(ctx, []string{"chronic kidney disease", "kidney failure", "weather in Paris"}, TaskRetrievalDocument)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.NotEmpty(t, vecs[0])
	assert.Equal(t, len(vecs[0]), len(vecs[2]))
}
