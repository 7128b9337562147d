package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/storage/memory"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

func pipelineConfig(t *testing.T) *domain.Config {
	t.Helper()
	cfg := testConfig()
	cfg.Output = t.TempDir()
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 100
	return cfg
}

func TestPipeline_Run_AllStages(t *testing.T) {
	src := newMockSource(map[string]string{
		"a.go":     "package main",
		"pkg/b.go": "package pkg",
	})
	llm := &mockLLM{}
	embedder := &mockEmbedder{}
	records := memory.NewRecordStore()
	vectors := memory.NewVectorStore()
	cfg := pipelineConfig(t)

	p := NewPipeline(cfg, src, llm, embedder, records, vectors)
	err := p.Run(context.Background())

	require.NoError(t, err)

	// Stage one: every node has a done record.
	stored, err := records.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	// Stage two: markdown documents mirror the repository layout.
	for _, rel := range []string{"README.md", "a.go.md", filepath.Join("pkg", "README.md"), filepath.Join("pkg", "b.go.md")} {
		_, err := os.Stat(filepath.Join(cfg.MarkdownRoot(), rel))
		assert.NoError(t, err, rel)
	}

	// Stage three: the index holds embedded chunks for the documents.
	count, err := vectors.Count(context.Background())
	require.NoError(t, err)
	assert.Positive(t, count)
	assert.Equal(t, count, embedder.calls())
}

func TestPipeline_Run_IncompleteTreeStillMaterializes(t *testing.T) {
	src := newMockSource(map[string]string{
		"good.go": "package main",
		"bad.go":  "package main",
	})
	llm := &mockLLM{}
	llm.generate = func(prompt string) (string, error) {
		if strings.Contains(prompt, "File: bad.go") {
			return "", errors.New("model rejected the input")
		}
		return "fine", nil
	}
	embedder := &mockEmbedder{}
	records := memory.NewRecordStore()
	vectors := memory.NewVectorStore()
	cfg := pipelineConfig(t)
	cfg.MaxAttempts = 1

	p := NewPipeline(cfg, src, llm, embedder, records, vectors)
	err := p.Run(context.Background())

	// The run reports the incomplete tree but only after materialising
	// and indexing what is done.
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIncomplete)

	_, statErr := os.Stat(filepath.Join(cfg.MarkdownRoot(), "good.go.md"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(cfg.MarkdownRoot(), "bad.go.md"))
	assert.True(t, os.IsNotExist(statErr))

	count, err := vectors.Count(context.Background())
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestPipeline_ProcessRepository_ForceOption(t *testing.T) {
	src := newMockSource(map[string]string{"a.go": "package main"})
	llm := &mockLLM{}
	records := memory.NewRecordStore()
	cfg := pipelineConfig(t)

	p := NewPipeline(cfg, src, llm, &mockEmbedder{}, records, memory.NewVectorStore())
	_, err := p.ProcessRepository(context.Background())
	require.NoError(t, err)

	forced := NewPipeline(cfg, src, llm, &mockEmbedder{}, records, memory.NewVectorStore(),
		WithForceReprocess(true))
	summary, err := forced.ProcessRepository(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Zero(t, summary.Skipped)
}
