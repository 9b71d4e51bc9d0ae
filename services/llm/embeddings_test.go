package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiEmbedder_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewGeminiEmbedder(TaskTypeRetrievalDocument)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewGeminiEmbedder_TaskTypeAndModelDefault(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_EMBEDDING_MODEL", "")

	e, err := NewGeminiEmbedder(TaskTypeRetrievalDocument)
	require.NoError(t, err)
	assert.Equal(t, "RETRIEVAL_DOCUMENT", e.taskType)
	assert.Equal(t, "text-embedding-004", e.model)
}

func TestNewOpenAIEmbedder_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewOpenAIEmbedder()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	e, err := NewOpenAIEmbedder()
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}
