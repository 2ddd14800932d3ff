package layer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputRoot_Prepare(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := NewOutputRoot(fs, "/data/out")

	dir, err := root.Prepare()
	require.NoError(t, err)
	assert.Equal(t, "/data/out", dir)

	info, err := fs.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	// removing it proves the second call doesn't touch the filesystem again
	require.NoError(t, fs.RemoveAll(dir))
	again, err := root.Prepare()
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	exists, err := afero.DirExists(fs, dir)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOutputRoot_PrepareExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/out", 0o755))

	for i := 0; i < 2; i++ {
		dir, err := NewOutputRoot(fs, "/data/out").Prepare()
		require.NoError(t, err)
		assert.Equal(t, "/data/out", dir)
	}
}

func TestOutputRoot_PrepareRelative(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	dir, err := NewOutputRoot(afero.NewMemMapFs(), "out").Prepare()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "out"), dir)
}

func TestOutputRoot_PrepareFails(t *testing.T) {
	root := NewOutputRoot(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/data/out")
	_, err := root.Prepare()
	require.ErrorIs(t, err, ErrEnvironment)

	// the first outcome sticks
	_, again := root.Prepare()
	assert.Same(t, err, again)
}
