package domain

import (
	"path"
	"strings"
	"sync"
)

// IgnoreMatcher decides whether a repository path is excluded from
// processing. Patterns use path.Match glob syntax; a bare name with no
// wildcard or separator also matches any path segment, so "node_modules"
// excludes the directory anywhere in the tree.
//
// Matching is pure and deterministic, so results are cached for the
// lifetime of the matcher.
type IgnoreMatcher struct {
	patterns []string

	mu    sync.RWMutex
	cache map[string]bool
}

// NewIgnoreMatcher creates a matcher over the given patterns.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	return &IgnoreMatcher{
		patterns: patterns,
		cache:    make(map[string]bool),
	}
}

// Matches reports whether the slash-separated relative path matches any
// pattern, either as a whole or on any individual segment.
func (m *IgnoreMatcher) Matches(relPath string) bool {
	m.mu.RLock()
	cached, ok := m.cache[relPath]
	m.mu.RUnlock()
	if ok {
		return cached
	}

	matched := m.matches(relPath)

	m.mu.Lock()
	m.cache[relPath] = matched
	m.mu.Unlock()
	return matched
}

func (m *IgnoreMatcher) matches(relPath string) bool {
	segments := strings.Split(relPath, "/")
	for _, pattern := range m.patterns {
		if ok, err := path.Match(pattern, relPath); err == nil && ok {
			return true
		}
		for _, segment := range segments {
			if ok, err := path.Match(pattern, segment); err == nil && ok {
				return true
			}
		}
	}
	return false
}
