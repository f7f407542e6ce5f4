package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"db2graph/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare_AllocatesSequentialDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "csv")
	opts := workspace.Options{CsvRoot: root}

	first, err := workspace.Prepare(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "csv-001"), first.CsvDirectory)

	second, err := workspace.Prepare(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "csv-002"), second.CsvDirectory)

	require.NoError(t, os.Mkdir(filepath.Join(root, "csv-010"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "unrelated"), 0o755))
	third, err := workspace.Prepare(opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "csv-011"), third.CsvDirectory)
}

func TestPrepare_Destination(t *testing.T) {
	tmp := t.TempDir()
	dest := filepath.Join(tmp, "graph.db")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "store"), 0o755))
	opts := workspace.Options{CsvRoot: filepath.Join(tmp, "csv"), Destination: dest}

	_, err := workspace.Prepare(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")
	assert.DirExists(t, dest)

	opts.Force = true
	ws, err := workspace.Prepare(opts)
	require.NoError(t, err)
	assert.NoDirExists(t, dest)
	assert.Equal(t, dest, ws.Destination)
}

func TestPrepare_ImportToolDirectory(t *testing.T) {
	tmp := t.TempDir()
	_, err := workspace.Prepare(workspace.Options{
		CsvRoot:             filepath.Join(tmp, "csv"),
		ImportToolDirectory: filepath.Join(tmp, "missing"),
	})
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "csv")
	dest := filepath.Join(tmp, "graph.db")
	require.NoError(t, os.Mkdir(dest, 0o755))

	for i := 0; i < 2; i++ {
		_, err := workspace.Prepare(workspace.Options{CsvRoot: root})
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("x"), 0o644))

	removed, err := workspace.Clean(root, dest, false)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.FileExists(t, filepath.Join(root, "keep.txt"))
	assert.DirExists(t, dest)

	removed, err = workspace.Clean(root, dest, true)
	require.NoError(t, err)
	assert.Equal(t, []string{dest}, removed)
	assert.NoDirExists(t, dest)
}
