package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eabdelmoneim/autodoc/internal/adapters/driven/storage/memory"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

func writeDoc(t *testing.T, dir, rel, body string) {
	t.Helper()
	target := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte(body), 0o644))
}

func TestIndexer_BuildIndex_ChunksAndStoresAllDocuments(t *testing.T) {
	docDir := t.TempDir()
	writeDoc(t, docDir, "README.md", "# demo\n\noverview text\n")
	writeDoc(t, docDir, "a.go.md", strings.Repeat("summary text for the a file\n", 100))
	writeDoc(t, docDir, "pkg/README.md", "# pkg/\n\npkg overview\n")
	writeDoc(t, docDir, "notes.txt", "not a document") // ignored

	cfg := testConfig()
	cfg.ChunkSize = 400
	cfg.ChunkOverlap = 80

	embedder := &mockEmbedder{}
	store := memory.NewVectorStore()
	ix := NewIndexer(embedder, store, cfg)

	summary, err := ix.BuildIndex(context.Background(), docDir)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Documents)
	assert.Greater(t, summary.Chunks, 3, "the long document must produce several chunks")
	assert.Empty(t, summary.Failed)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.Chunks, count)
	assert.Equal(t, summary.Chunks, embedder.calls())

	// Stored chunks carry their document path and the config metadata.
	hits, err := store.Search(context.Background(), []float32{1, 0, 0}, summary.Chunks)
	require.NoError(t, err)
	docPaths := make(map[string]bool)
	for _, hit := range hits {
		docPaths[hit.Chunk.DocumentPath] = true
		assert.Equal(t, "code", hit.Chunk.Metadata["content_type"])
		assert.Equal(t, "technical", hit.Chunk.Metadata["target_audience"])
		assert.NotEmpty(t, hit.Chunk.ID)
	}
	assert.True(t, docPaths["README.md"])
	assert.True(t, docPaths["a.go.md"])
	assert.True(t, docPaths["pkg/README.md"])
}

func TestIndexer_BuildIndex_RebuildReplacesIndex(t *testing.T) {
	docDir := t.TempDir()
	writeDoc(t, docDir, "a.go.md", "short summary")

	embedder := &mockEmbedder{}
	store := memory.NewVectorStore()
	ix := NewIndexer(embedder, store, testConfig())

	_, err := ix.BuildIndex(context.Background(), docDir)
	require.NoError(t, err)

	summary, err := ix.BuildIndex(context.Background(), docDir)
	require.NoError(t, err)

	// A rebuild resets the store instead of accumulating duplicates.
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.Chunks, count)
}

func TestIndexer_BuildIndex_FailedChunkDoesNotBlockOthers(t *testing.T) {
	docDir := t.TempDir()
	writeDoc(t, docDir, "good.md", "good summary")
	writeDoc(t, docDir, "poison.md", "poison summary")

	embedder := &mockEmbedder{}
	embedder.embed = func(text string) ([]float32, error) {
		if strings.Contains(text, "poison") {
			return nil, errors.New("embedding rejected")
		}
		return []float32{0, 1, 0}, nil
	}
	store := memory.NewVectorStore()
	ix := NewIndexer(embedder, store, testConfig())
	ix.retry = fastRetry(2)

	summary, err := ix.BuildIndex(context.Background(), docDir)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Documents)
	assert.Equal(t, 1, summary.Chunks)
	assert.Len(t, summary.Failed, 1)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// flakyVectorStore rejects chunks whose content matches a marker.
type flakyVectorStore struct {
	*memory.VectorStore
	reject string
}

func (s *flakyVectorStore) Add(ctx context.Context, chunk domain.Chunk) error {
	if strings.Contains(chunk.Content, s.reject) {
		return errors.New("disk full")
	}
	return s.VectorStore.Add(ctx, chunk)
}

func TestIndexer_BuildIndex_StoreFailureNotCountedAsStored(t *testing.T) {
	docDir := t.TempDir()
	writeDoc(t, docDir, "good.md", "good summary")
	writeDoc(t, docDir, "poison.md", "poison summary")

	store := &flakyVectorStore{VectorStore: memory.NewVectorStore(), reject: "poison"}
	ix := NewIndexer(&mockEmbedder{}, store, testConfig())

	summary, err := ix.BuildIndex(context.Background(), docDir)

	require.NoError(t, err)
	// A chunk the store rejected is failed, never also counted as stored.
	assert.Equal(t, 1, summary.Chunks)
	assert.Len(t, summary.Failed, 1)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, summary.Chunks, count)
}

func TestIndexer_BuildIndex_EmptyDocDir(t *testing.T) {
	embedder := &mockEmbedder{}
	store := memory.NewVectorStore()
	ix := NewIndexer(embedder, store, testConfig())

	summary, err := ix.BuildIndex(context.Background(), t.TempDir())

	require.NoError(t, err)
	assert.Zero(t, summary.Documents)
	assert.Zero(t, summary.Chunks)
}
