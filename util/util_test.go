package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestGatherAllMidiPathsRecursive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mid"))
	touch(t, filepath.Join(root, "jazz", "b.MID"))
	touch(t, filepath.Join(root, "jazz", "deep", "c.midi"))
	touch(t, filepath.Join(root, "jazz", "notes.txt"))

	paths, err := GatherAllMidiPaths(root, true)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Len(paths, 3)
	assert.Contains(paths, filepath.Join(root, "a.mid"))
	assert.Contains(paths, filepath.Join(root, "jazz", "b.MID"))
	assert.Contains(paths, filepath.Join(root, "jazz", "deep", "c.midi"))
}

func TestGatherAllMidiPathsNonRecursive(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.mid"))
	touch(t, filepath.Join(root, "jazz", "b.mid"))

	paths, err := GatherAllMidiPaths(root, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a.mid")}, paths)
}

func TestGatherAllMidiPathsMissingRoot(t *testing.T) {
	_, err := GatherAllMidiPaths(filepath.Join(t.TempDir(), "nope"), true)
	assert.Error(t, err)
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(m))
}

func TestGetKeysEmpty(t *testing.T) {
	assert.Empty(t, GetKeys(map[uint8]bool{}))
}
