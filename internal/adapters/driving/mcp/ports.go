package mcp

import (
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server needs. This provides a
// single injection point for dependency injection.
type Ports struct {
	// Search answers queries over the documentation index.
	Search driving.SearchService

	// ChatPrompt is the configured assistant prompt, surfaced to clients
	// as context for the search tool.
	ChatPrompt string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
