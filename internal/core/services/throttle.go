package services

import (
	"context"
	"errors"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/ratelimit"
)

// Throttling wraps the model services so the request rate is controlled
// by a token bucket independent of the worker-pool size. A provider
// rate-limit response feeds back into the limiter as an extra backoff
// window before the next request.

// Ensure decorators implement the interfaces.
var (
	_ driven.LLMService       = (*ThrottledLLM)(nil)
	_ driven.EmbeddingService = (*ThrottledEmbedder)(nil)
)

// ThrottledLLM rate-limits an LLMService.
type ThrottledLLM struct {
	driven.LLMService
	limiter *ratelimit.Limiter
}

// NewThrottledLLM wraps inner with the limiter.
func NewThrottledLLM(inner driven.LLMService, limiter *ratelimit.Limiter) *ThrottledLLM {
	return &ThrottledLLM{LLMService: inner, limiter: limiter}
}

// Generate waits for a token before delegating.
func (t *ThrottledLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	result, err := t.LLMService.Generate(ctx, prompt, opts)
	if errors.Is(err, domain.ErrRateLimited) {
		t.limiter.RecordRateLimitError(0)
	}
	return result, err
}

// ThrottledEmbedder rate-limits an EmbeddingService.
type ThrottledEmbedder struct {
	driven.EmbeddingService
	limiter *ratelimit.Limiter
}

// NewThrottledEmbedder wraps inner with the limiter.
func NewThrottledEmbedder(inner driven.EmbeddingService, limiter *ratelimit.Limiter) *ThrottledEmbedder {
	return &ThrottledEmbedder{EmbeddingService: inner, limiter: limiter}
}

// Embed waits for a token before delegating.
func (t *ThrottledEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vector, err := t.EmbeddingService.Embed(ctx, text)
	if errors.Is(err, domain.ErrRateLimited) {
		t.limiter.RecordRateLimitError(0)
	}
	return vector, err
}

// EmbedBatch waits for a token before delegating.
func (t *ThrottledEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vectors, err := t.EmbeddingService.EmbedBatch(ctx, texts)
	if errors.Is(err, domain.ErrRateLimited) {
		t.limiter.RecordRateLimitError(0)
	}
	return vectors, err
}
