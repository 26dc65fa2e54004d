package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_MissingFileIsEmpty(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "nested", "state.json"))

	_, err := fs.Load(TokenKey)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting from a missing file is a no-op
	assert.NoError(t, fs.Delete(TokenKey))
}

func TestFileStorage_CreatesDirectoryWithPrivatePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	fs := NewFileStorage(path)

	require.NoError(t, fs.Save(TokenKey, "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	v, err := fs.Load(TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "secret", v)
}

func TestFileStorage_DeleteKeepsOtherKeys(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, fs.Save(TokenKey, "secret"))
	require.NoError(t, fs.Save("other", "value"))
	require.NoError(t, fs.Delete(TokenKey))

	_, err := fs.Load(TokenKey)
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := fs.Load("other")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	fs := NewFileStorage(path)
	_, err := fs.Load(TokenKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse state file")
}
