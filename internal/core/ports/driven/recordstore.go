package driven

import (
	"context"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

// RecordStore persists ProcessingRecords keyed by node path. The store
// must support safe concurrent writes to independent keys; no cross-key
// transaction is required.
//
// Backed by one JSON artifact per node under the output json root.
type RecordStore interface {
	// Get retrieves the record for a node path.
	// Returns domain.ErrNotFound if no record exists.
	Get(ctx context.Context, path string) (*domain.ProcessingRecord, error)

	// Save writes a record durably. Called on every state transition so a
	// crashed run resumes from the last written state.
	Save(ctx context.Context, record *domain.ProcessingRecord) error

	// List returns all stored records in unspecified order.
	List(ctx context.Context) ([]domain.ProcessingRecord, error)
}
