package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

func TestSplitModelID(t *testing.T) {
	tests := []struct {
		id           string
		wantProvider string
		wantModel    string
	}{
		{"openai:gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"ollama:llama3.2", "ollama", "llama3.2"},
		{"gpt-4o", "openai", "gpt-4o"},
		{"ollama:nomic:embed", "ollama", "nomic:embed"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			provider, model := splitModelID(tt.id)
			assert.Equal(t, tt.wantProvider, provider)
			assert.Equal(t, tt.wantModel, model)
		})
	}
}

func TestCreateLLMService_EmptyList(t *testing.T) {
	_, err := CreateLLMService(nil)

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestCreateLLMService_UnknownProviderSkipped(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	// Every candidate fails to construct; the error lists each of them.
	_, err := CreateLLMService([]string{"anthropic:claude", "openai:gpt-4o"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic:claude")
	assert.Contains(t, err.Error(), "openai:gpt-4o")
}

func TestCreateLLMService_OpenAIWithoutKeyFails(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := CreateLLMService([]string{"openai:gpt-4o-mini"})

	assert.Error(t, err)
}

func TestCreateEmbeddingService_OllamaPreference(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	svc, err := CreateEmbeddingService([]string{"openai:gpt-4o", "ollama:llama3.2"})

	// OpenAI has no key, so the ollama entry provides embeddings.
	assert.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateEmbeddingService_NoProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := CreateEmbeddingService([]string{"openai:gpt-4o"})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
