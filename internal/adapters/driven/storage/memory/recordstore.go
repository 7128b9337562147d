// Package memory provides in-memory implementations of the storage
// ports, used in tests and anywhere persistence is not needed.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.ProcessingRecord
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]domain.ProcessingRecord),
	}
}

// Get retrieves the record for a node path.
func (s *RecordStore) Get(_ context.Context, path string) (*domain.ProcessingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[path]
	if !ok {
		return nil, fmt.Errorf("record %q: %w", path, domain.ErrNotFound)
	}
	return &record, nil
}

// Save stores or updates a record.
func (s *RecordStore) Save(_ context.Context, record *domain.ProcessingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Path] = *record
	return nil
}

// List returns all stored records, ordered by path.
func (s *RecordStore) List(_ context.Context) ([]domain.ProcessingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ProcessingRecord, 0, len(s.records))
	for path := range s.records {
		records = append(records, s.records[path])
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}
