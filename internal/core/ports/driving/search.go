package driving

import (
	"context"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

// SearchService answers semantic queries over the built index.
type SearchService interface {
	// Query embeds the query text and returns the nearest chunks,
	// best first.
	Query(ctx context.Context, query string, limit int) ([]domain.ChunkHit, error)
}
