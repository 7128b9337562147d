package mcp

import (
	"context"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	hits  []domain.ChunkHit
	err   error
	limit int
}

func (m *mockSearchService) Query(_ context.Context, _ string, limit int) ([]domain.ChunkHit, error) {
	m.limit = limit
	return m.hits, m.err
}
