package services

import (
	"context"
	"fmt"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driving"
)

// Ensure Search implements the interface.
var _ driving.SearchService = (*Search)(nil)

// DefaultSearchLimit is the result count when the caller does not set one.
const DefaultSearchLimit = 10

// Search answers semantic queries over the built vector index.
type Search struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewSearch creates a search service.
func NewSearch(embedder driven.EmbeddingService, store driven.VectorStore) *Search {
	return &Search{
		embedder: embedder,
		store:    store,
	}
}

// Query embeds the query text and returns the nearest chunks, best first.
func (s *Search) Query(ctx context.Context, query string, limit int) ([]domain.ChunkHit, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.store.Search(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return hits, nil
}
