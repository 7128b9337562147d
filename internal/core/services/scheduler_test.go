package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/storage/memory"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

func testConfig() *domain.Config {
	cfg := &domain.Config{
		Name:   "demo",
		Root:   "/repo",
		Output: "/out",
		LLMs:   []string{"openai:gpt-4o-mini"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// crawlMock builds the node tree for a mock source.
func crawlMock(t *testing.T, src *mockSource) *domain.RepoNode {
	t.Helper()
	tree, err := NewCrawler(src, domain.NewIgnoreMatcher(nil)).Crawl(context.Background())
	require.NoError(t, err)
	return tree
}

func TestScheduler_Run_ProcessesWholeTree(t *testing.T) {
	src := newMockSource(map[string]string{
		"a.go":     "package main",
		"pkg/b.go": "package pkg",
	})
	llm := &mockLLM{}
	records := memory.NewRecordStore()
	tree := crawlMock(t, src)

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2, WithRetry(fastRetry(2)))
	summary, err := s.Run(context.Background(), tree)

	require.NoError(t, err)
	assert.Equal(t, 4, summary.Processed) // a.go, pkg/b.go, pkg, root
	assert.Zero(t, summary.Skipped)
	assert.Empty(t, summary.Failed)
	assert.Empty(t, summary.Blocked)

	for _, path := range []string{"a.go", "pkg/b.go", "pkg", ""} {
		record, err := records.Get(context.Background(), path)
		require.NoError(t, err, path)
		assert.Equal(t, domain.StatusDone, record.Status, path)
		assert.NotEmpty(t, record.Summary, path)
		assert.NotEmpty(t, record.Fingerprint, path)
	}
}

func TestScheduler_Run_FolderPromptSeesChildSummaries(t *testing.T) {
	src := newMockSource(map[string]string{
		"pkg/b.go": "package pkg",
	})
	llm := &mockLLM{}
	llm.generate = func(prompt string) (string, error) {
		if strings.Contains(prompt, "File: pkg/b.go") {
			return "b-go-file-summary", nil
		}
		return "folder-summary", nil
	}
	records := memory.NewRecordStore()
	tree := crawlMock(t, src)

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2)
	_, err := s.Run(context.Background(), tree)
	require.NoError(t, err)

	// The pkg folder prompt is built from the already-produced child
	// summary, which proves children completed before their parent.
	var folderPrompt string
	for _, prompt := range llm.prompts {
		if strings.Contains(prompt, "Folder: pkg") {
			folderPrompt = prompt
		}
	}
	require.NotEmpty(t, folderPrompt)
	assert.Contains(t, folderPrompt, "b-go-file-summary")
}

func TestScheduler_Run_SecondRunReusesEverything(t *testing.T) {
	src := newMockSource(map[string]string{
		"a.go":     "package main",
		"pkg/b.go": "package pkg",
	})
	llm := &mockLLM{}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2)
	_, err := s.Run(context.Background(), crawlMock(t, src))
	require.NoError(t, err)
	callsAfterFirst := llm.calls()

	summary, err := s.Run(context.Background(), crawlMock(t, src))

	require.NoError(t, err)
	assert.Zero(t, summary.Processed)
	assert.Equal(t, 4, summary.Skipped)
	assert.Equal(t, callsAfterFirst, llm.calls(), "an unchanged rerun must make no model calls")
}

func TestScheduler_Run_ChangedFileInvalidatesAncestors(t *testing.T) {
	files := map[string]string{
		"a.go":     "package main",
		"pkg/b.go": "package pkg",
	}
	src := newMockSource(files)
	llm := &mockLLM{}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2)
	_, err := s.Run(context.Background(), crawlMock(t, src))
	require.NoError(t, err)

	files["pkg/b.go"] = "package pkg // changed"
	summary, err := s.Run(context.Background(), crawlMock(t, src))

	require.NoError(t, err)
	// The changed file, its folder, and the root are reprocessed; the
	// untouched sibling is reused.
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestScheduler_Run_Force_ReprocessesEverything(t *testing.T) {
	src := newMockSource(map[string]string{"a.go": "package main"})
	llm := &mockLLM{}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2)
	_, err := s.Run(context.Background(), crawlMock(t, src))
	require.NoError(t, err)

	forced := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2, WithForce(true))
	summary, err := forced.Run(context.Background(), crawlMock(t, src))

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Zero(t, summary.Skipped)
}

func TestScheduler_Run_PartialFailure(t *testing.T) {
	src := newMockSource(map[string]string{
		"a.go":        "package main",
		"pkg/bad.go":  "package pkg",
		"pkg/good.go": "package pkg",
	})
	llm := &mockLLM{}
	llm.generate = func(prompt string) (string, error) {
		if strings.Contains(prompt, "File: pkg/bad.go") {
			return "", errors.New("model rejected the input")
		}
		return "ok", nil
	}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2, WithRetry(fastRetry(2)))
	summary, err := s.Run(context.Background(), crawlMock(t, src))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIncomplete)
	assert.Contains(t, err.Error(), "pkg/bad.go")

	// The failed node and its ancestors are not done; siblings are.
	assert.Equal(t, []string{"pkg/bad.go"}, summary.Failed)
	assert.Equal(t, []string{"", "pkg"}, summary.Blocked)
	assert.Equal(t, 2, summary.Processed) // a.go and pkg/good.go

	badRecord, err := records.Get(context.Background(), "pkg/bad.go")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, badRecord.Status)
	assert.NotEmpty(t, badRecord.Error)

	pkgRecord, err := records.Get(context.Background(), "pkg")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBlocked, pkgRecord.Status)

	goodRecord, err := records.Get(context.Background(), "pkg/good.go")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, goodRecord.Status)
}

func TestScheduler_Run_TransientErrorRetriesThenSucceeds(t *testing.T) {
	src := newMockSource(map[string]string{"a.go": "package main"})
	failures := 2
	llm := &mockLLM{}
	llm.generate = func(string) (string, error) {
		if failures > 0 {
			failures--
			return "", fmt.Errorf("throttled: %w", domain.ErrRateLimited)
		}
		return "recovered", nil
	}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 1, WithRetry(fastRetry(4)))
	summary, err := s.Run(context.Background(), crawlMock(t, src))

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)

	record, err := records.Get(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, record.Status)
	assert.Equal(t, 3, record.Attempts)
}

func TestScheduler_Run_TransientErrorExhaustsRetries(t *testing.T) {
	src := newMockSource(map[string]string{"a.go": "package main"})
	llm := &mockLLM{}
	llm.generate = func(string) (string, error) {
		return "", fmt.Errorf("down: %w", domain.ErrUnavailable)
	}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 1, WithRetry(fastRetry(2)))
	summary, err := s.Run(context.Background(), crawlMock(t, src))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIncomplete)
	assert.Equal(t, []string{"a.go"}, summary.Failed)

	record, err := records.Get(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, record.Status)
	assert.Equal(t, 2, record.Attempts)
}

func TestScheduler_Run_FatalErrorCancelsRun(t *testing.T) {
	src := newMockSource(map[string]string{
		"a.go": "package main",
		"b.go": "package main",
	})
	llm := &mockLLM{}
	llm.generate = func(string) (string, error) {
		return "", fmt.Errorf("401: %w", domain.ErrAuthInvalid)
	}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2, WithRetry(fastRetry(3)))
	_, err := s.Run(context.Background(), crawlMock(t, src))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)
}

func TestScheduler_Run_FatalAbortDoesNotFailInFlightNodes(t *testing.T) {
	src := newMockSource(map[string]string{
		"bad.go":  "package main",
		"slow.go": "package main",
	})

	// slow.go is guaranteed in flight before bad.go returns the fatal
	// error, then sits in its generate call until the run is cancelled.
	started := make(chan struct{})
	llm := &mockLLM{}
	llm.generateCtx = func(ctx context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "File: bad.go") {
			<-started
			return "", fmt.Errorf("401: %w", domain.ErrAuthInvalid)
		}
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 2, WithRetry(fastRetry(3)))
	summary, err := s.Run(context.Background(), crawlMock(t, src))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthInvalid)

	// Only the node that produced the fatal error is failed; the
	// cancelled in-flight node is neither failed nor persisted as such.
	assert.Equal(t, []string{"bad.go"}, summary.Failed)

	record, err := records.Get(context.Background(), "slow.go")
	require.NoError(t, err)
	assert.NotEqual(t, domain.StatusFailed, record.Status)
}

func TestScheduler_Run_UnreadableFileFailsAndBlocksAncestors(t *testing.T) {
	src := newMockSource(map[string]string{"a.go": "package main"})
	src.readErr["a.go"] = errors.New("permission denied")
	llm := &mockLLM{}
	records := memory.NewRecordStore()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 1)
	summary, err := s.Run(context.Background(), crawlMock(t, src))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIncomplete)
	assert.Equal(t, []string{"a.go"}, summary.Failed)
	assert.Equal(t, []string{""}, summary.Blocked)
	assert.Zero(t, llm.calls())
}

func TestScheduler_Run_CancelledContext(t *testing.T) {
	src := newMockSource(map[string]string{"a.go": "package main"})
	llm := &mockLLM{}
	records := memory.NewRecordStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScheduler(NewNodeProcessor(llm, testConfig()), records, src, 1)
	_, err := s.Run(ctx, crawlMock(t, src))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, llm.calls())
}
