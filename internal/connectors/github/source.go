// Package github provides a content source over a remote GitHub
// repository, read through the tree and blob API without a local
// checkout.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/ratelimit"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Config identifies the repository to read.
type Config struct {
	// Owner is the user or organisation name.
	Owner string

	// Repo is the repository name.
	Repo string

	// Ref is the branch or tag to read. Empty means the default branch.
	Ref string

	// Token is a personal access token. Empty works for public
	// repositories within unauthenticated rate limits.
	Token string
}

// Source reads repository content from the GitHub API. The repository
// tree is fetched once, lazily, and directory listings are served from
// it; file reads fetch the blob for the entry's SHA.
type Source struct {
	cfg     Config
	client  *gh.Client
	limiter *ratelimit.Limiter

	mu      sync.Mutex
	entries map[string][]driven.Entry // dir path -> listing
	blobs   map[string]string         // file path -> blob SHA
}

// New creates a GitHub source for the configured repository.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("%w: github source requires owner and repo", domain.ErrInvalidConfig)
	}

	httpClient := http.DefaultClient
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return &Source{
		cfg:    cfg,
		client: gh.NewClient(httpClient),
		// Stay well below the API's secondary rate limits.
		limiter: ratelimit.New(ratelimit.Config{RequestsPerSecond: 5.0, Burst: 10}),
	}, nil
}

// Name returns "owner/repo".
func (s *Source) Name() string {
	return s.cfg.Owner + "/" + s.cfg.Repo
}

// List returns the entries of the directory at relPath.
func (s *Source) List(ctx context.Context, relPath string) ([]driven.Entry, error) {
	if err := s.ensureTree(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	entries, ok := s.entries[relPath]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no such directory %q in %s", domain.ErrAccess, relPath, s.Name())
	}
	return entries, nil
}

// Read fetches the blob content of the file at relPath.
func (s *Source) Read(ctx context.Context, relPath string) ([]byte, error) {
	if err := s.ensureTree(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sha, ok := s.blobs[relPath]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no such file %q in %s", domain.ErrAccess, relPath, s.Name())
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	blob, resp, err := s.client.Git.GetBlob(ctx, s.cfg.Owner, s.cfg.Repo, sha)
	if err != nil {
		return nil, classify(resp, fmt.Errorf("get blob %s: %w", relPath, err))
	}

	if blob.GetEncoding() == "base64" {
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("decode blob %s: %w", relPath, err)
		}
		return decoded, nil
	}
	return []byte(blob.GetContent()), nil
}

// Close releases resources.
func (s *Source) Close() error {
	return nil
}

// ensureTree fetches the recursive repository tree on first use and
// indexes it into per-directory listings.
func (s *Source) ensureTree(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.entries != nil
	s.mu.Unlock()
	if loaded {
		return nil
	}

	ref := s.cfg.Ref
	if ref == "" {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		repo, resp, err := s.client.Repositories.Get(ctx, s.cfg.Owner, s.cfg.Repo)
		if err != nil {
			return classify(resp, fmt.Errorf("get repository %s: %w", s.Name(), err))
		}
		ref = repo.GetDefaultBranch()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	tree, resp, err := s.client.Git.GetTree(ctx, s.cfg.Owner, s.cfg.Repo, ref, true)
	if err != nil {
		return classify(resp, fmt.Errorf("get tree %s@%s: %w", s.Name(), ref, err))
	}

	entries := map[string][]driven.Entry{"": {}}
	blobs := make(map[string]string)
	for _, item := range tree.Entries {
		p := item.GetPath()
		dir := path.Dir(p)
		if dir == "." {
			dir = ""
		}
		switch item.GetType() {
		case "tree":
			entries[p] = []driven.Entry{}
			entries[dir] = append(entries[dir], driven.Entry{Name: path.Base(p), IsDir: true})
		case "blob":
			blobs[p] = item.GetSHA()
			entries[dir] = append(entries[dir], driven.Entry{Name: path.Base(p)})
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.blobs = blobs
	s.mu.Unlock()
	return nil
}

// classify maps GitHub API failures onto the domain error taxonomy so the
// scheduler can decide between retry and abort.
func classify(resp *gh.Response, err error) error {
	if resp == nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", domain.ErrAuthInvalid, err)
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrAccess, err)
	}
}
