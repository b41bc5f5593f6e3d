package fs

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealFS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.js"), []byte("export var a"), 0644))

	fs := RealFS(RealFSOptions{FileCacheSize: 2})

	contents, err := fs.ReadFile(fs.Join(dir, "src", "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "export var a", contents)

	// Reads are cached for the lifetime of the file system object
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.js"), []byte("changed"), 0644))
	contents, err = fs.ReadFile(fs.Join(dir, "src", "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "export var a", contents)

	_, err = fs.ReadFile(fs.Join(dir, "missing.js"))
	assert.True(t, errors.Is(err, syscall.ENOENT))

	entries, err := fs.ReadDirectory(dir)
	require.NoError(t, err)
	kind, ok := entries.Get("src")
	assert.True(t, ok)
	assert.Equal(t, DirEntry, kind)

	entries, err = fs.ReadDirectory(filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js"}, entries.SortedKeys())

	_, err = fs.ReadDirectory(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	rel, ok := fs.Rel(dir, fs.Join(dir, "src", "a.js"))
	assert.True(t, ok)
	assert.Equal(t, filepath.Join("src", "a.js"), rel)
	assert.Equal(t, ".js", fs.Ext("a.js"))
}
