// Package ai provides factory functions for creating AI service adapters
// from the configured model preference list.
package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	ollamaembed "github.com/eabdelmoneim/autodoc/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/eabdelmoneim/autodoc/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/eabdelmoneim/autodoc/internal/adapters/driven/llm/ollama"
	openaillm "github.com/eabdelmoneim/autodoc/internal/adapters/driven/llm/openai"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// apiKeyEnv is where the OpenAI API key is read from.
const apiKeyEnv = "OPENAI_API_KEY"

// CreateLLMService walks the ordered model preference list and returns
// the first provider that constructs and responds to a ping. Identifiers
// take the form "provider:model", e.g. "openai:gpt-4o-mini" or
// "ollama:llama3.2"; a bare model name defaults to the openai provider.
func CreateLLMService(llms []string) (driven.LLMService, error) {
	if len(llms) == 0 {
		return nil, fmt.Errorf("%w: no models configured", domain.ErrInvalidConfig)
	}

	var errs []string
	for _, id := range llms {
		provider, model := splitModelID(id)

		svc, err := createLLM(provider, model)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", id, err))
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = svc.Ping(ctx)
		cancel()
		if err != nil {
			svc.Close()
			errs = append(errs, fmt.Sprintf("%s: %v", id, err))
			logger.Debug("Model %s unavailable: %v", id, err)
			continue
		}

		logger.Info("Using model %s", id)
		return svc, nil
	}

	return nil, fmt.Errorf("%w: no configured model is reachable (%s)",
		domain.ErrUnavailable, strings.Join(errs, "; "))
}

// CreateEmbeddingService returns an embedding service matching the LLM
// provider preference: OpenAI embeddings when an API key is configured,
// Ollama otherwise.
func CreateEmbeddingService(llms []string) (driven.EmbeddingService, error) {
	for _, id := range llms {
		provider, _ := splitModelID(id)
		switch provider {
		case "openai":
			if key := os.Getenv(apiKeyEnv); key != "" {
				return openaiembed.NewEmbeddingService(openaiembed.Config{APIKey: key})
			}
		case "ollama":
			return ollamaembed.NewEmbeddingService(ollamaembed.Config{}), nil
		}
	}
	return nil, fmt.Errorf("%w: no embedding provider for configured models", domain.ErrInvalidConfig)
}

func createLLM(provider, model string) (driven.LLMService, error) {
	switch provider {
	case "openai":
		key := os.Getenv(apiKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("%w: %s is not set", domain.ErrAuthInvalid, apiKeyEnv)
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey: key,
			Model:  model,
		})
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.LLMConfig{Model: model}), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidConfig, provider)
	}
}

// splitModelID splits "provider:model" into its parts. A bare model name
// defaults to the openai provider.
func splitModelID(id string) (provider, model string) {
	if before, after, ok := strings.Cut(id, ":"); ok {
		return before, after
	}
	return "openai", id
}
