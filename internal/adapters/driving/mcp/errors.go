package mcp

import "errors"

// ErrMissingSearchService indicates the search port was not provided.
var ErrMissingSearchService = errors.New("search service is required")
