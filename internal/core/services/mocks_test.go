package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
)

// mockSource is an in-memory content source built from a flat map of
// file paths to content. Folder listings are derived from the paths.
type mockSource struct {
	name    string
	entries map[string][]driven.Entry
	files   map[string]string
	listErr map[string]error
	readErr map[string]error

	mu    sync.Mutex
	reads []string
}

// newMockSource builds a source from path -> content. Paths use slashes;
// intermediate folders are derived.
func newMockSource(files map[string]string) *mockSource {
	s := &mockSource{
		name:    "mock",
		entries: make(map[string][]driven.Entry),
		files:   files,
		listErr: make(map[string]error),
		readErr: make(map[string]error),
	}

	seen := make(map[string]bool)
	addEntry := func(dir string, entry driven.Entry) {
		key := dir + "/" + entry.Name
		if seen[key] {
			return
		}
		seen[key] = true
		s.entries[dir] = append(s.entries[dir], entry)
	}

	for path := range files {
		dir := ""
		rest := path
		for {
			i := indexSlash(rest)
			if i < 0 {
				addEntry(dir, driven.Entry{Name: rest, IsDir: false})
				break
			}
			addEntry(dir, driven.Entry{Name: rest[:i], IsDir: true})
			if dir == "" {
				dir = rest[:i]
			} else {
				dir = dir + "/" + rest[:i]
			}
			rest = rest[i+1:]
		}
	}
	return s
}

func indexSlash(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func (s *mockSource) Name() string { return s.name }

func (s *mockSource) List(_ context.Context, relPath string) ([]driven.Entry, error) {
	if err := s.listErr[relPath]; err != nil {
		return nil, err
	}
	return s.entries[relPath], nil
}

func (s *mockSource) Read(_ context.Context, relPath string) ([]byte, error) {
	s.mu.Lock()
	s.reads = append(s.reads, relPath)
	s.mu.Unlock()

	if err := s.readErr[relPath]; err != nil {
		return nil, err
	}
	content, ok := s.files[relPath]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", relPath)
	}
	return []byte(content), nil
}

func (s *mockSource) Close() error { return nil }

// mockLLM is a scripted LLM service that records every prompt.
type mockLLM struct {
	mu      sync.Mutex
	prompts []string

	// generate overrides the default echo behaviour when set.
	generate func(prompt string) (string, error)

	// generateCtx takes precedence over generate for scripts that need
	// the call context.
	generateCtx func(ctx context.Context, prompt string) (string, error)
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.generateCtx != nil {
		return m.generateCtx(ctx, prompt)
	}
	if m.generate != nil {
		return m.generate(prompt)
	}
	return fmt.Sprintf("summary %d", m.calls()), nil
}

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockEmbedder is a scripted embedding service.
type mockEmbedder struct {
	mu    sync.Mutex
	texts []string

	// embed overrides the default constant vector when set.
	embed func(text string) ([]float32, error)
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.embed != nil {
		return m.embed(text)
	}
	return []float32{1, 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (m *mockEmbedder) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }
