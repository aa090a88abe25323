package credstore_test

import (
	"path/filepath"
	"testing"

	"github.com/ruliana/technoir-transmission-generator/internal/credstore"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) credstore.Store {
	t.Helper()
	t.Setenv("GENAI_API_KEY", "")
	return credstore.New(filepath.Join(t.TempDir(), "deep", "api_key"))
}

func TestSetGetClear(t *testing.T) {
	store := newStore(t)

	key, err := store.Get()
	require.NoError(t, err)
	require.Empty(t, key, "a fresh store holds no credential")

	require.NoError(t, store.Set("sk-test-123"))
	key, err = store.Get()
	require.NoError(t, err)
	require.Equal(t, "sk-test-123", key)

	require.NoError(t, store.Clear())
	key, err = store.Get()
	require.NoError(t, err)
	require.Empty(t, key)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Set("sk-from-file"))

	t.Setenv("GENAI_API_KEY", "sk-from-env")
	key, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, "sk-from-env", key)
}
