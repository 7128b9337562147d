package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// defaultLimit is the result count when a client omits one.
const defaultLimit = 10

// SearchInput is the input schema for the search_docs tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find documentation"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search_docs tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentPath string  `json:"document_path"`
	Similarity   float64 `json:"similarity"`
	Content      string  `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	description := "Search the generated repository documentation"
	if s.ports.ChatPrompt != "" {
		description = fmt.Sprintf("%s. %s", description, s.ports.ChatPrompt)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_docs",
		Description: description,
	}, s.handleSearch)
}

// handleSearch handles the search_docs tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	hits, err := s.ports.Search.Query(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}
	for i := range hits {
		output.Results[i] = SearchResultOutput{
			DocumentPath: hits[i].Chunk.DocumentPath,
			Similarity:   hits[i].Similarity,
			Content:      hits[i].Chunk.Content,
		}
	}

	return nil, output, nil
}
