package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"transcribeasy/internal/domain"
)

// TestCatalogLookup verifies ID lookup and miss behavior.
func TestCatalogLookup(t *testing.T) {
	catalog := NewCatalog([]CatalogEntry{
		{ID: "alpha", FileName: "alpha.bin"},
		{ID: "beta", FileName: "beta.bin"},
	})

	entry, ok := catalog.Lookup("beta")
	require.True(t, ok)
	require.Equal(t, "beta.bin", entry.FileName)

	_, ok = catalog.Lookup("gamma")
	require.False(t, ok)
}

// TestCatalogDefaults verifies every preset starts not present.
func TestCatalogDefaults(t *testing.T) {
	catalog := NewCatalog([]CatalogEntry{
		{ID: "alpha"},
		{ID: "beta"},
	})

	defaults := catalog.Defaults()
	require.Len(t, defaults, 2)
	for id, record := range defaults {
		require.Equal(t, domain.ModelStateNotPresent, record.State, "model %s", id)
		require.Zero(t, record.Progress)
	}
}

// TestCatalogEntriesOrder verifies iteration preserves declaration order.
func TestCatalogEntriesOrder(t *testing.T) {
	catalog := NewCatalog([]CatalogEntry{
		{ID: "c"}, {ID: "a"}, {ID: "b"},
	})

	entries := catalog.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, domain.ModelID("c"), entries[0].ID)
	require.Equal(t, domain.ModelID("a"), entries[1].ID)
	require.Equal(t, domain.ModelID("b"), entries[2].ID)
}

// TestCatalogEntryPathIn verifies destination path construction.
func TestCatalogEntryPathIn(t *testing.T) {
	entry := CatalogEntry{ID: "alpha", FileName: "ggml-alpha.bin"}
	require.Equal(t, filepath.Join("/models", "ggml-alpha.bin"), entry.PathIn("/models"))
}

// TestDefaultCatalogPresets verifies built-in presets are complete.
func TestDefaultCatalogPresets(t *testing.T) {
	catalog := DefaultCatalog()
	entries := catalog.Entries()
	require.Len(t, entries, 10)

	seen := make(map[domain.ModelID]bool, len(entries))
	for _, entry := range entries {
		require.NotEmpty(t, entry.Name, "model %s", entry.ID)
		require.NotEmpty(t, entry.FileName, "model %s", entry.ID)
		require.Contains(t, entry.URL, "https://huggingface.co/", "model %s", entry.ID)
		require.False(t, seen[entry.ID], "duplicate id %s", entry.ID)
		seen[entry.ID] = true
	}

	entry, ok := catalog.Lookup("base.en")
	require.True(t, ok)
	require.Equal(t, "ggml-base.en.bin", entry.FileName)
}
