package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driving"
	"github.com/eabdelmoneim/autodoc/internal/logger"
	"github.com/eabdelmoneim/autodoc/internal/ratelimit"
)

// Ensure PipelineService implements the interface.
var _ driving.Pipeline = (*PipelineService)(nil)

// PipelineService wires the three documentation stages together. A single
// token-bucket limiter gates both summarisation and embedding calls, so
// the external request rate is controlled independently of the worker
// pool.
type PipelineService struct {
	cfg      *domain.Config
	source   driven.ContentSource
	llm      driven.LLMService
	embedder driven.EmbeddingService
	records  driven.RecordStore
	vectors  driven.VectorStore
	force    bool
}

// PipelineOption configures the pipeline.
type PipelineOption func(*PipelineService)

// WithForceReprocess reprocesses every node regardless of fingerprints.
func WithForceReprocess(force bool) PipelineOption {
	return func(p *PipelineService) { p.force = force }
}

// NewPipeline creates the pipeline over the given ports. The model
// services are wrapped with a shared rate limiter built from the config.
func NewPipeline(
	cfg *domain.Config,
	source driven.ContentSource,
	llm driven.LLMService,
	embedder driven.EmbeddingService,
	records driven.RecordStore,
	vectors driven.VectorStore,
	opts ...PipelineOption,
) *PipelineService {
	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})

	p := &PipelineService{
		cfg:      cfg,
		source:   source,
		llm:      NewThrottledLLM(llm, limiter),
		embedder: NewThrottledEmbedder(embedder, limiter),
		records:  records,
		vectors:  vectors,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessRepository crawls the repository and produces per-node summaries
// bottom-up, writing records under the json root.
func (p *PipelineService) ProcessRepository(ctx context.Context) (*driving.RunSummary, error) {
	crawler := NewCrawler(p.source, domain.NewIgnoreMatcher(p.cfg.Ignore))
	tree, err := crawler.Crawl(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("Crawled %d nodes from %s", tree.CountNodes(), p.source.Name())

	retry := DefaultRetryConfig()
	retry.MaxAttempts = p.cfg.MaxAttempts

	scheduler := NewScheduler(
		NewNodeProcessor(p.llm, p.cfg),
		p.records,
		p.source,
		p.cfg.Concurrency,
		WithRetry(retry),
		WithForce(p.force),
	)

	summary, err := scheduler.Run(ctx, tree)
	if summary != nil {
		logger.Info("Processed %d, skipped %d, failed %d, blocked %d",
			summary.Processed, summary.Skipped, len(summary.Failed), len(summary.Blocked))
	}
	return summary, err
}

// ConvertJSONToMarkdown materialises the summary records into linked
// markdown documents under the markdown root.
func (p *PipelineService) ConvertJSONToMarkdown(ctx context.Context) (*driving.MaterializeSummary, error) {
	materializer := NewMaterializer(p.records, p.cfg)
	summary, err := materializer.Materialize(ctx, p.cfg.MarkdownRoot())
	if summary != nil {
		logger.Info("Wrote %d documents, skipped %d", summary.Written, len(summary.Skipped))
	}
	return summary, err
}

// CreateVectorStore chunks and embeds the markdown documents into the
// vector index under the data root.
func (p *PipelineService) CreateVectorStore(ctx context.Context) (*driving.IndexSummary, error) {
	indexer := NewIndexer(p.embedder, p.vectors, p.cfg)
	indexer.retry.MaxAttempts = p.cfg.MaxAttempts

	summary, err := indexer.BuildIndex(ctx, p.cfg.MarkdownRoot())
	if summary != nil {
		logger.Info("Indexed %d chunks from %d documents, %d failed",
			summary.Chunks, summary.Documents, len(summary.Failed))
	}
	return summary, err
}

// Run executes all three stages in order. An incomplete summary tree does
// not stop materialisation and indexing of the nodes that are done; the
// incomplete error is reported at the end of the run.
func (p *PipelineService) Run(ctx context.Context) error {
	_, processErr := p.ProcessRepository(ctx)
	if processErr != nil && !errors.Is(processErr, domain.ErrIncomplete) {
		return fmt.Errorf("process repository: %w", processErr)
	}

	if _, err := p.ConvertJSONToMarkdown(ctx); err != nil {
		return fmt.Errorf("convert to markdown: %w", err)
	}

	if _, err := p.CreateVectorStore(ctx); err != nil {
		return fmt.Errorf("create vector store: %w", err)
	}

	return processErr
}
