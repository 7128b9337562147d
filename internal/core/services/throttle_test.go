package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/ratelimit"
)

func TestThrottledLLM_Generate_Delegates(t *testing.T) {
	llm := &mockLLM{}
	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 1000, Burst: 10})

	throttled := NewThrottledLLM(llm, limiter)
	result, err := throttled.Generate(context.Background(), "prompt", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.NotEmpty(t, result)
	assert.Equal(t, 1, llm.calls())
	assert.Equal(t, "mock-model", throttled.ModelName())
}

func TestThrottledLLM_Generate_RateLimitFeedsBackoff(t *testing.T) {
	llm := &mockLLM{}
	llm.generate = func(string) (string, error) {
		return "", fmt.Errorf("429: %w", domain.ErrRateLimited)
	}
	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 1000, Burst: 10})

	throttled := NewThrottledLLM(llm, limiter)
	_, err := throttled.Generate(context.Background(), "prompt", driven.GenerateOptions{})

	require.ErrorIs(t, err, domain.ErrRateLimited)
	// The provider's rate-limit response must back off subsequent calls.
	assert.False(t, limiter.Allow())
}

func TestThrottledLLM_Generate_CancelledContext(t *testing.T) {
	llm := &mockLLM{}
	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 0.001, Burst: 1})

	throttled := NewThrottledLLM(llm, limiter)
	// Drain the single burst token.
	_, err := throttled.Generate(context.Background(), "one", driven.GenerateOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = throttled.Generate(ctx, "two", driven.GenerateOptions{})

	require.Error(t, err)
	assert.Equal(t, 1, llm.calls(), "the second call must not reach the provider")
}

func TestThrottledEmbedder_Embed_Delegates(t *testing.T) {
	embedder := &mockEmbedder{}
	limiter := ratelimit.New(ratelimit.Config{RequestsPerSecond: 1000, Burst: 10})

	throttled := NewThrottledEmbedder(embedder, limiter)
	vector, err := throttled.Embed(context.Background(), "text")

	require.NoError(t, err)
	assert.Len(t, vector, 3)
	assert.Equal(t, 1, embedder.calls())
	assert.Equal(t, 3, throttled.Dimensions())
}
