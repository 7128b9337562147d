package driven

import (
	"context"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

// VectorStore persists embedded chunks and answers nearest-neighbour
// queries by embedding distance.
//
// Backed by SQLite under the output data root. The index is rebuilt fully
// on each Index Builder run.
type VectorStore interface {
	// Reset removes all stored chunks ahead of a full rebuild.
	Reset(ctx context.Context) error

	// Add stores one embedded chunk.
	Add(ctx context.Context, chunk domain.Chunk) error

	// Search returns the k chunks nearest to the query vector, best first,
	// including chunk text and source metadata.
	Search(ctx context.Context, query []float32, k int) ([]domain.ChunkHit, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
