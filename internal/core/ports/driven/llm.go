package driven

import "context"

// LLMService provides text generation for node summarisation.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Ollama (local models)
//
// Adapters classify provider failures with the domain sentinels:
// rate-limit responses wrap domain.ErrRateLimited, server errors and
// network failures wrap domain.ErrUnavailable, and credential rejections
// wrap domain.ErrAuthInvalid, so callers can retry or abort accordingly.
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
