// Package filesystem provides a content source over a local repository
// checkout.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Source reads repository content from a local directory.
type Source struct {
	root string
}

// New creates a filesystem source rooted at root. The root must exist and
// be a directory.
func New(root string) (*Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccess, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrAccess, root)
	}
	return &Source{root: root}, nil
}

// Name returns the root path.
func (s *Source) Name() string {
	return s.root
}

// List returns the entries of the directory at relPath.
func (s *Source) List(_ context.Context, relPath string) ([]driven.Entry, error) {
	entries, err := os.ReadDir(s.abs(relPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccess, err)
	}

	result := make([]driven.Entry, 0, len(entries))
	for _, entry := range entries {
		// Symlinks and other irregular entries are not crawled.
		if !entry.IsDir() && !entry.Type().IsRegular() {
			continue
		}
		result = append(result, driven.Entry{
			Name:  entry.Name(),
			IsDir: entry.IsDir(),
		})
	}
	return result, nil
}

// Read returns the bytes of the file at relPath.
func (s *Source) Read(_ context.Context, relPath string) ([]byte, error) {
	content, err := os.ReadFile(s.abs(relPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAccess, err)
	}
	return content, nil
}

// Close releases resources.
func (s *Source) Close() error {
	return nil
}

func (s *Source) abs(relPath string) string {
	return filepath.Join(s.root, filepath.FromSlash(relPath))
}
