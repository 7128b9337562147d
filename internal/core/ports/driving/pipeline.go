package driving

import "context"

// Pipeline exposes the three documentation stages. Each stage is
// idempotent over already-completed work and reads the previous stage's
// output directory as its authoritative input.
type Pipeline interface {
	// ProcessRepository crawls the repository and produces per-node
	// summaries under the json root, bottom-up and resumable.
	ProcessRepository(ctx context.Context) (*RunSummary, error)

	// ConvertJSONToMarkdown materialises the summary records into linked
	// markdown documents under the markdown root.
	ConvertJSONToMarkdown(ctx context.Context) (*MaterializeSummary, error)

	// CreateVectorStore chunks and embeds the markdown documents into the
	// vector index under the data root.
	CreateVectorStore(ctx context.Context) (*IndexSummary, error)

	// Run executes all three stages in order.
	Run(ctx context.Context) error
}

// RunSummary reports the outcome of ProcessRepository.
type RunSummary struct {
	// Processed counts nodes summarised this run.
	Processed int

	// Skipped counts nodes reused from matching done records.
	Skipped int

	// Failed holds the paths of nodes whose retries were exhausted.
	Failed []string

	// Blocked holds the paths of ancestors that could not be processed
	// because a descendant failed.
	Blocked []string
}

// MaterializeSummary reports the outcome of ConvertJSONToMarkdown.
type MaterializeSummary struct {
	// Written counts documents written.
	Written int

	// Skipped holds the paths omitted because their record was missing or
	// not done.
	Skipped []string
}

// IndexSummary reports the outcome of CreateVectorStore.
type IndexSummary struct {
	// Documents counts documents read from the markdown root.
	Documents int

	// Chunks counts chunks embedded and stored.
	Chunks int

	// Failed holds the chunk IDs whose embedding retries were exhausted.
	Failed []string
}
