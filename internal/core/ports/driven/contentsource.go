package driven

import "context"

// Entry is one directory listing entry from a content source.
type Entry struct {
	// Name is the base name of the entry.
	Name string

	// IsDir indicates a directory entry.
	IsDir bool
}

// ContentSource abstracts repository content access: listing directory
// entries and reading file bytes relative to a root.
//
// Implementations may include:
//   - Local filesystem (a checked-out repository)
//   - GitHub (remote tree and blob fetch, no local checkout)
type ContentSource interface {
	// Name identifies the source for logging, e.g. the root path or
	// "owner/repo" for remote sources.
	Name() string

	// List returns the entries of the directory at the slash-separated
	// relative path. An empty path lists the root. An unreadable path
	// returns an error wrapping domain.ErrAccess.
	List(ctx context.Context, relPath string) ([]Entry, error)

	// Read returns the bytes of the file at the relative path.
	Read(ctx context.Context, relPath string) ([]byte, error)

	// Close releases resources.
	Close() error
}
