package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"transcribeasy/internal/domain"
)

func testCatalog() *Catalog {
	return NewCatalog([]CatalogEntry{
		{ID: "alpha", FileName: "ggml-alpha.bin", URL: "https://example.test/alpha"},
		{ID: "beta", FileName: "ggml-beta.bin", URL: "https://example.test/beta"},
	})
}

// TestStatusStoreLoadMissingFile verifies defaults when no file exists.
func TestStatusStoreLoadMissingFile(t *testing.T) {
	store := NewJSONStatusStore(filepath.Join(t.TempDir(), "models.json"), testCatalog(), nil)

	records := store.Load()
	require.Len(t, records, 2)
	require.Equal(t, domain.ModelStateNotPresent, records["alpha"].State)
	require.Equal(t, domain.ModelStateNotPresent, records["beta"].State)
}

// TestStatusStoreLoadCorruptFile verifies malformed JSON falls back to
// defaults instead of failing.
func TestStatusStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewJSONStatusStore(path, testCatalog(), nil)
	records := store.Load()
	require.Len(t, records, 2)
	require.Equal(t, domain.ModelStateNotPresent, records["alpha"].State)
}

// TestStatusStoreRoundTrip verifies save then load preserves records.
func TestStatusStoreRoundTrip(t *testing.T) {
	store := NewJSONStatusStore(filepath.Join(t.TempDir(), "models.json"), testCatalog(), nil)

	require.NoError(t, store.Save(map[domain.ModelID]domain.ModelRecord{
		"alpha": {State: domain.ModelStatePresent, Progress: 100},
		"beta":  {State: domain.ModelStateNotPresent},
	}))

	records := store.Load()
	require.Equal(t, domain.ModelRecord{State: domain.ModelStatePresent, Progress: 100}, records["alpha"])
	require.Equal(t, domain.ModelRecord{State: domain.ModelStateNotPresent}, records["beta"])
}

// TestStatusStoreLoadIgnoresUnknownIDs verifies IDs outside the catalog
// are dropped and missing catalog IDs are filled in.
func TestStatusStoreLoadIgnoresUnknownIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	payload := `{
		"alpha": {"state": "present", "progress": 100},
		"retired-model": {"state": "present", "progress": 100}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	store := NewJSONStatusStore(path, testCatalog(), nil)
	records := store.Load()

	require.Len(t, records, 2)
	require.NotContains(t, records, domain.ModelID("retired-model"))
	require.Equal(t, domain.ModelStatePresent, records["alpha"].State)
	require.Equal(t, domain.ModelStateNotPresent, records["beta"].State)
}

// TestStatusStoreLoadNormalizesRecords verifies clamping of persisted
// values: present pins to 100, downloading clamps, junk states reset.
func TestStatusStoreLoadNormalizesRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	payload := `{
		"alpha": {"state": "present", "progress": 7},
		"beta": {"state": "downloading", "progress": 250}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	store := NewJSONStatusStore(path, testCatalog(), nil)
	records := store.Load()

	require.Equal(t, domain.ModelRecord{State: domain.ModelStatePresent, Progress: 100}, records["alpha"])
	require.Equal(t, domain.ModelRecord{State: domain.ModelStateDownloading, Progress: 100}, records["beta"])
}

// TestStatusStoreLoadUnknownState verifies an unrecognized state resets
// to not present.
func TestStatusStoreLoadUnknownState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	payload := `{"alpha": {"state": "installing", "progress": 50}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	store := NewJSONStatusStore(path, testCatalog(), nil)
	records := store.Load()
	require.Equal(t, domain.ModelRecord{State: domain.ModelStateNotPresent}, records["alpha"])
}

// TestStatusStoreSaveCreatesParentDir verifies the storage directory is
// created on first save.
func TestStatusStoreSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "models.json")
	store := NewJSONStatusStore(path, testCatalog(), nil)

	require.NoError(t, store.Save(testCatalog().Defaults()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
