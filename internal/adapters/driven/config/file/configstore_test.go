package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreSetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("server.addr", ":8000"))
	require.NoError(t, store.Set("workers", 8))
	require.NoError(t, store.Set("retrieval.lambda", 0.7))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, ":8000", store.GetString("server.addr"))
	assert.Equal(t, 8, store.GetInt("workers"))
	assert.InDelta(t, 0.7, store.GetFloat("retrieval.lambda"), 1e-9)
	assert.True(t, store.GetBool("verbose"))
}

func TestConfigStoreMissingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("absent")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("absent"))
	assert.Zero(t, store.GetInt("absent"))
	assert.Zero(t, store.GetFloat("absent"))
	assert.False(t, store.GetBool("absent"))
}

func TestConfigStorePersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", reloaded.GetString("llm.model"))
}

func TestConfigStoreFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[retrieval]\nk = 10\nfetch_k = 25\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 10, store.GetInt("retrieval.k"))
	assert.Equal(t, 25, store.GetInt("retrieval.fetch_k"))
}

func TestPromptStoreFallsBackToDefaults(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load("grounded_qa")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Not found in the provided document.")

	label, err := store.Load("context_label")
	require.NoError(t, err)
	assert.Contains(t, label, "source=%s")
}

func TestPromptStoreUsesUserFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grounded_qa.txt"), []byte("custom %s %s"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load("grounded_qa")
	require.NoError(t, err)
	assert.Equal(t, "custom %s %s", prompt)
}
