package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
)

func newTestRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "lib.go"), []byte("package pkg"), 0o644))
	return root
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New("/does/not/exist")

	assert.ErrorIs(t, err, domain.ErrAccess)
}

func TestNew_RootIsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := New(file)

	assert.ErrorIs(t, err, domain.ErrAccess)
}

func TestSource_List_Root(t *testing.T) {
	src, err := New(newTestRepo(t))
	require.NoError(t, err)
	defer src.Close()

	entries, err := src.List(context.Background(), "")

	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := make(map[string]bool)
	for _, entry := range entries {
		byName[entry.Name] = entry.IsDir
	}
	assert.False(t, byName["main.go"])
	assert.True(t, byName["pkg"])
}

func TestSource_List_Subfolder(t *testing.T) {
	src, err := New(newTestRepo(t))
	require.NoError(t, err)

	entries, err := src.List(context.Background(), "pkg")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lib.go", entries[0].Name)
}

func TestSource_List_Missing(t *testing.T) {
	src, err := New(newTestRepo(t))
	require.NoError(t, err)

	_, err = src.List(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrAccess)
}

func TestSource_List_SkipsSymlinks(t *testing.T) {
	root := newTestRepo(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "main.go"), filepath.Join(root, "link.go")))

	src, err := New(root)
	require.NoError(t, err)

	entries, err := src.List(context.Background(), "")
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotEqual(t, "link.go", entry.Name)
	}
}

func TestSource_Read(t *testing.T) {
	src, err := New(newTestRepo(t))
	require.NoError(t, err)

	content, err := src.Read(context.Background(), "pkg/lib.go")

	require.NoError(t, err)
	assert.Equal(t, "package pkg", string(content))
}

func TestSource_Read_Missing(t *testing.T) {
	src, err := New(newTestRepo(t))
	require.NoError(t, err)

	_, err = src.Read(context.Background(), "nope.go")

	assert.ErrorIs(t, err, domain.ErrAccess)
}

func TestSource_Name(t *testing.T) {
	root := newTestRepo(t)
	src, err := New(root)
	require.NoError(t, err)

	assert.Equal(t, root, src.Name())
}
