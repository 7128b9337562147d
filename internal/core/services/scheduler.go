package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driving"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// Scheduler executes the node processor over the whole tree: bottom-up
// dependency order, bounded concurrency, retry with backoff, and
// resumability through the record store.
//
// A folder is processed only once every child has reached a terminal
// state, and summarised only when all children are done. Sibling subtrees
// are independent; a failure in one never stops another. Fatal errors
// (invalid credentials, invalid config) cancel the whole run.
type Scheduler struct {
	processor *NodeProcessor
	records   driven.RecordStore
	source    driven.ContentSource
	retry     RetryConfig
	force     bool

	// slots bounds concurrent node processing; acquired only around the
	// summarisation work, never while waiting on children.
	slots chan struct{}

	mu       sync.Mutex
	summary  driving.RunSummary
	fatalErr error
	cancel   context.CancelFunc
}

// SchedulerOption configures the scheduler.
type SchedulerOption func(*Scheduler)

// WithRetry overrides the retry policy.
func WithRetry(cfg RetryConfig) SchedulerOption {
	return func(s *Scheduler) { s.retry = cfg }
}

// WithForce reprocesses every node regardless of stored fingerprints.
func WithForce(force bool) SchedulerOption {
	return func(s *Scheduler) { s.force = force }
}

// NewScheduler creates a scheduler with a worker pool of the given size.
func NewScheduler(
	processor *NodeProcessor,
	records driven.RecordStore,
	source driven.ContentSource,
	workers int,
	opts ...SchedulerOption,
) *Scheduler {
	if workers <= 0 {
		workers = domain.DefaultConcurrency
	}
	s := &Scheduler{
		processor: processor,
		records:   records,
		source:    source,
		retry:     DefaultRetryConfig(),
		slots:     make(chan struct{}, workers),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// nodeResult is the terminal outcome of processing one subtree.
type nodeResult struct {
	summary string
	done    bool
}

// Run processes the tree and returns a run summary. The summary is
// returned even on error so callers can report partial progress. An
// incomplete tree returns an error wrapping domain.ErrIncomplete listing
// every failed and blocked path.
func (s *Scheduler) Run(ctx context.Context, tree *domain.RepoNode) (*driving.RunSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.summary = driving.RunSummary{}
	s.fatalErr = nil
	s.cancel = cancel
	s.mu.Unlock()

	s.processNode(ctx, tree)

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.summary
	sort.Strings(summary.Failed)
	sort.Strings(summary.Blocked)

	if s.fatalErr != nil {
		return &summary, s.fatalErr
	}
	if err := ctx.Err(); err != nil {
		return &summary, err
	}
	if len(summary.Failed) > 0 || len(summary.Blocked) > 0 {
		return &summary, fmt.Errorf("%w: %d failed (%s), %d blocked (%s)",
			domain.ErrIncomplete,
			len(summary.Failed), strings.Join(summary.Failed, ", "),
			len(summary.Blocked), strings.Join(summary.Blocked, ", "))
	}
	return &summary, nil
}

// processNode drives one subtree to a terminal state and returns its
// summary when done.
func (s *Scheduler) processNode(ctx context.Context, node *domain.RepoNode) nodeResult {
	if ctx.Err() != nil {
		return nodeResult{}
	}
	if node.IsFolder() {
		return s.processFolder(ctx, node)
	}
	return s.processFile(ctx, node)
}

func (s *Scheduler) processFile(ctx context.Context, node *domain.RepoNode) nodeResult {
	content, err := s.source.Read(ctx, node.Path)
	if err != nil {
		if ctx.Err() != nil {
			return nodeResult{}
		}
		s.markFailed(ctx, node, 0, fmt.Errorf("%w: %v", domain.ErrAccess, err))
		return nodeResult{}
	}

	fingerprint := domain.FingerprintBytes(content)
	if summary, ok := s.reuse(ctx, node, fingerprint); ok {
		return nodeResult{summary: summary, done: true}
	}

	return s.summarise(ctx, node, fingerprint, func(genCtx context.Context) (string, error) {
		return s.processor.ProcessFile(genCtx, node, string(content))
	})
}

func (s *Scheduler) processFolder(ctx context.Context, node *domain.RepoNode) nodeResult {
	results := make([]nodeResult, len(node.Children))

	var wg sync.WaitGroup
	for i, child := range node.Children {
		wg.Add(1)
		go func(i int, child *domain.RepoNode) {
			defer wg.Done()
			results[i] = s.processNode(ctx, child)
		}(i, child)
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nodeResult{}
	}

	// Prompt order: files before subfolders, crawl order within each.
	var children []ChildSummary
	var incomplete []string
	for _, kind := range []domain.NodeKind{domain.NodeFile, domain.NodeFolder} {
		for i, child := range node.Children {
			if child.Kind != kind {
				continue
			}
			if !results[i].done {
				incomplete = append(incomplete, child.Path)
				continue
			}
			children = append(children, ChildSummary{
				Path:    child.Path,
				Kind:    child.Kind,
				Summary: results[i].summary,
			})
		}
	}

	if len(incomplete) > 0 {
		s.markBlocked(ctx, node, incomplete)
		return nodeResult{}
	}

	summaries := make([]string, len(children))
	for i, child := range children {
		summaries[i] = child.Summary
	}
	fingerprint := domain.FingerprintSummaries(summaries)

	if summary, ok := s.reuse(ctx, node, fingerprint); ok {
		return nodeResult{summary: summary, done: true}
	}

	return s.summarise(ctx, node, fingerprint, func(genCtx context.Context) (string, error) {
		return s.processor.ProcessFolder(genCtx, node, children)
	})
}

// reuse checks the record store for a done record with a matching
// fingerprint and reports whether the stored summary can be reused.
func (s *Scheduler) reuse(ctx context.Context, node *domain.RepoNode, fingerprint string) (string, bool) {
	if s.force {
		return "", false
	}
	record, err := s.records.Get(ctx, node.Path)
	if err != nil || !record.Reusable(fingerprint) {
		return "", false
	}

	logger.Debug("Skipping %s: fingerprint unchanged", node.Path)
	s.mu.Lock()
	s.summary.Skipped++
	s.mu.Unlock()
	return record.Summary, true
}

// summarise runs the generation callback under the worker pool with the
// retry policy, persisting every state transition.
func (s *Scheduler) summarise(
	ctx context.Context,
	node *domain.RepoNode,
	fingerprint string,
	generate func(context.Context) (string, error),
) nodeResult {
	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		return nodeResult{}
	}
	if ctx.Err() != nil {
		return nodeResult{}
	}

	now := time.Now()
	record := &domain.ProcessingRecord{
		Path:        node.Path,
		Kind:        node.Kind,
		Fingerprint: fingerprint,
		Status:      domain.StatusInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.records.Save(ctx, record); err != nil {
		s.fatal(fmt.Errorf("save record %s: %w", node.Path, err))
		return nodeResult{}
	}

	summary, attempts, err := retryWithBackoff(ctx, s.retry, func() (string, error) {
		return generate(ctx)
	})
	record.Attempts = attempts
	record.UpdatedAt = time.Now()

	if err != nil {
		if domain.IsFatal(err) {
			s.fatal(err)
		} else if ctx.Err() != nil {
			// The run was aborted elsewhere; this node was cancelled
			// mid-flight, not failed.
			return nodeResult{}
		}
		s.markFailed(ctx, node, attempts, fmt.Errorf("%w: %v", domain.ErrGeneration, err))
		return nodeResult{}
	}

	record.Status = domain.StatusDone
	record.Summary = summary
	if err := s.records.Save(ctx, record); err != nil {
		s.fatal(fmt.Errorf("save record %s: %w", node.Path, err))
		return nodeResult{}
	}

	logger.Info("Summarised %s (%d attempt(s))", displayPath(node), attempts)
	s.mu.Lock()
	s.summary.Processed++
	s.mu.Unlock()
	return nodeResult{summary: summary, done: true}
}

func (s *Scheduler) markFailed(ctx context.Context, node *domain.RepoNode, attempts int, cause error) {
	logger.Warn("Failed %s: %v", displayPath(node), cause)

	now := time.Now()
	record := &domain.ProcessingRecord{
		Path:        node.Path,
		Kind:        node.Kind,
		Status:      domain.StatusFailed,
		Attempts:    attempts,
		Error:       cause.Error(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.records.Save(ctx, record); err != nil {
		logger.Warn("Could not persist failure for %s: %v", node.Path, err)
	}

	s.mu.Lock()
	s.summary.Failed = append(s.summary.Failed, node.Path)
	s.mu.Unlock()
}

func (s *Scheduler) markBlocked(ctx context.Context, node *domain.RepoNode, incomplete []string) {
	logger.Warn("Blocked %s: children not done: %s", displayPath(node), strings.Join(incomplete, ", "))

	now := time.Now()
	record := &domain.ProcessingRecord{
		Path:      node.Path,
		Kind:      node.Kind,
		Status:    domain.StatusBlocked,
		Error:     fmt.Sprintf("children not done: %s", strings.Join(incomplete, ", ")),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.records.Save(ctx, record); err != nil {
		logger.Warn("Could not persist blocked state for %s: %v", node.Path, err)
	}

	s.mu.Lock()
	s.summary.Blocked = append(s.summary.Blocked, node.Path)
	s.mu.Unlock()
}

// fatal records the first fatal error and cancels the run.
func (s *Scheduler) fatal(err error) {
	s.mu.Lock()
	if s.fatalErr == nil {
		s.fatalErr = err
	}
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// displayPath names the root node sensibly in logs.
func displayPath(node *domain.RepoNode) string {
	if node.Path == "" {
		return "(root)"
	}
	return node.Path
}
