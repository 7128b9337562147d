package services

import (
	"context"
	"fmt"
	"path"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// Crawler builds the RepoNode tree from a content source in one
// depth-first pass, applying the ignore matcher.
type Crawler struct {
	source driven.ContentSource
	ignore *domain.IgnoreMatcher
}

// NewCrawler creates a crawler over the given source and ignore patterns.
func NewCrawler(source driven.ContentSource, ignore *domain.IgnoreMatcher) *Crawler {
	return &Crawler{
		source: source,
		ignore: ignore,
	}
}

// Crawl returns the root folder node of the repository tree. An
// unreadable root is fatal; unreadable children are skipped with a
// warning. Children are sorted lexically by name so processing order is
// reproducible.
func (c *Crawler) Crawl(ctx context.Context) (*domain.RepoNode, error) {
	root := &domain.RepoNode{
		Path: "",
		Name: path.Base(c.source.Name()),
		Kind: domain.NodeFolder,
	}

	if err := c.crawlFolder(ctx, root); err != nil {
		return nil, fmt.Errorf("crawl %s: %w", c.source.Name(), err)
	}
	return root, nil
}

func (c *Crawler) crawlFolder(ctx context.Context, folder *domain.RepoNode) error {
	entries, err := c.source.List(ctx, folder.Path)
	if err != nil {
		if folder.Parent == nil {
			// Unreadable root aborts the crawl.
			return err
		}
		logger.Warn("Skipping unreadable folder %s: %v", folder.Path, err)
		return nil
	}

	for _, entry := range entries {
		relPath := path.Join(folder.Path, entry.Name)
		if c.ignore.Matches(relPath) {
			logger.Debug("Ignoring %s", relPath)
			continue
		}

		child := &domain.RepoNode{
			Path:   relPath,
			Name:   entry.Name,
			Parent: folder,
		}
		if entry.IsDir {
			child.Kind = domain.NodeFolder
			if err := c.crawlFolder(ctx, child); err != nil {
				return err
			}
		} else {
			child.Kind = domain.NodeFile
		}
		folder.Children = append(folder.Children, child)
	}

	folder.SortChildren()
	return nil
}
