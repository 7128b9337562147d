package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eabdelmoneim/autodoc/internal/chunker"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driving"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// Indexer makes the generated documentation semantically searchable. It
// reads every materialised document, windows it into overlapping chunks,
// embeds each chunk, and persists the full index to the vector store.
//
// The index is rebuilt from scratch on every run. Embedding failures are
// scoped per chunk: one chunk exhausting its retries does not block the
// others, and the failed chunk IDs are surfaced in the run summary.
type Indexer struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	cfg      *domain.Config
	retry    RetryConfig
	workers  int
}

// NewIndexer creates an indexer with the given embedding service and
// vector store.
func NewIndexer(embedder driven.EmbeddingService, store driven.VectorStore, cfg *domain.Config) *Indexer {
	return &Indexer{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		retry:    DefaultRetryConfig(),
		workers:  cfg.Concurrency,
	}
}

// BuildIndex reads all documents under docDir and rebuilds the vector
// index. Rerunning with identical documents produces functionally
// equivalent index content.
func (ix *Indexer) BuildIndex(ctx context.Context, docDir string) (*driving.IndexSummary, error) {
	docs, err := readDocuments(docDir)
	if err != nil {
		return nil, err
	}

	chunks := ix.chunkDocuments(docs)
	logger.Info("Indexing %d chunks from %d documents", len(chunks), len(docs))

	if err := ix.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset vector store: %w", err)
	}

	summary := &driving.IndexSummary{Documents: len(docs)}
	failed := ix.embedAndStore(ctx, chunks, summary)
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	sort.Strings(failed)
	summary.Failed = failed
	return summary, nil
}

// document is one materialised markdown file.
type document struct {
	path string // slash-separated, relative to the markdown root
	body string
}

// readDocuments loads every markdown file under docDir.
func readDocuments(docDir string) ([]document, error) {
	var docs []document
	err := filepath.WalkDir(docDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".md" {
			return nil
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(docDir, p)
		if err != nil {
			return err
		}
		docs = append(docs, document{
			path: filepath.ToSlash(rel),
			body: string(body),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read documents under %s: %w", docDir, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].path < docs[j].path })
	return docs, nil
}

// chunkDocuments windows each document body into embedding chunks.
func (ix *Indexer) chunkDocuments(docs []document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for i, text := range chunker.Window(doc.body, ix.cfg.ChunkSize, ix.cfg.ChunkOverlap) {
			chunks = append(chunks, domain.Chunk{
				ID:           uuid.New().String(),
				DocumentPath: doc.path,
				Position:     i,
				Content:      text,
				Metadata: map[string]any{
					"content_type":    ix.cfg.ContentType,
					"target_audience": ix.cfg.TargetAudience,
				},
			})
		}
	}
	return chunks
}

// embedAndStore embeds chunks on a bounded worker pool and stores each
// successful chunk. A chunk's failure is recorded, never propagated, so
// one bad chunk cannot cancel its siblings. Returns the IDs of chunks
// whose retries were exhausted.
func (ix *Indexer) embedAndStore(ctx context.Context, chunks []domain.Chunk, summary *driving.IndexSummary) []string {
	var (
		mu     sync.Mutex
		failed []string
	)

	var g errgroup.Group
	g.SetLimit(ix.workers)
	for i := range chunks {
		if ctx.Err() != nil {
			break
		}
		chunk := chunks[i]
		g.Go(func() error {
			vector, _, err := retryWithBackoff(ctx, ix.retry, func() ([]float32, error) {
				return ix.embedder.Embed(ctx, chunk.Content)
			})
			if err != nil {
				logger.Warn("Embedding failed for %s chunk %d: %v", chunk.DocumentPath, chunk.Position, err)
				mu.Lock()
				failed = append(failed, chunk.ID)
				mu.Unlock()
				return nil
			}

			chunk.Embedding = vector
			if err := ix.store.Add(ctx, chunk); err != nil {
				logger.Warn("Storing chunk %s failed: %v", chunk.ID, err)
				mu.Lock()
				failed = append(failed, chunk.ID)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			summary.Chunks++
			mu.Unlock()
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors
	return failed
}
