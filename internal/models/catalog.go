package models

import (
	"path/filepath"

	"transcribeasy/internal/domain"
)

// CatalogEntry describes one downloadable whisper.cpp model preset.
type CatalogEntry struct {
	ID          domain.ModelID
	Name        string
	FileName    string
	URL         string
	SizeLabel   string
	Description string
}

// PathIn returns the destination file path for this entry under dir.
func (e CatalogEntry) PathIn(dir string) string {
	return filepath.Join(dir, e.FileName)
}

// Catalog is the closed set of model presets known to the application.
type Catalog struct {
	entries []CatalogEntry
	byID    map[domain.ModelID]CatalogEntry
}

// NewCatalog builds a catalog from the given entries. Later duplicates of
// an ID shadow earlier ones in lookups but not in iteration order.
func NewCatalog(entries []CatalogEntry) *Catalog {
	byID := make(map[domain.ModelID]CatalogEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}
	return &Catalog{
		entries: append([]CatalogEntry(nil), entries...),
		byID:    byID,
	}
}

// Entries returns all presets in declaration order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the preset for id, if it exists.
func (c *Catalog) Lookup(id domain.ModelID) (CatalogEntry, bool) {
	entry, ok := c.byID[id]
	return entry, ok
}

// Defaults returns the baseline record set: every catalog ID mapped to
// not-present with zero progress.
func (c *Catalog) Defaults() map[domain.ModelID]domain.ModelRecord {
	records := make(map[domain.ModelID]domain.ModelRecord, len(c.entries))
	for _, entry := range c.entries {
		records[entry.ID] = domain.ModelRecord{State: domain.ModelStateNotPresent}
	}
	return records
}

// DefaultCatalog returns the built-in whisper.cpp presets served from
// HuggingFace.
func DefaultCatalog() *Catalog {
	return NewCatalog([]CatalogEntry{
		{
			ID:          "tiny.en",
			Name:        "Tiny (English)",
			FileName:    "ggml-tiny.en.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.en.bin",
			SizeLabel:   "~75 MB",
			Description: "Fastest, English-only model.",
		},
		{
			ID:          "tiny",
			Name:        "Tiny (Multilingual)",
			FileName:    "ggml-tiny.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
			SizeLabel:   "~75 MB",
			Description: "Fastest multilingual model.",
		},
		{
			ID:          "base.en",
			Name:        "Base (English)",
			FileName:    "ggml-base.en.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin",
			SizeLabel:   "~142 MB",
			Description: "Balanced speed/quality, English-only.",
		},
		{
			ID:          "base",
			Name:        "Base (Multilingual)",
			FileName:    "ggml-base.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
			SizeLabel:   "~142 MB",
			Description: "Balanced speed/quality, multilingual.",
		},
		{
			ID:          "small.en",
			Name:        "Small (English)",
			FileName:    "ggml-small.en.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.en.bin",
			SizeLabel:   "~466 MB",
			Description: "Higher quality, English-only.",
		},
		{
			ID:          "small",
			Name:        "Small (Multilingual)",
			FileName:    "ggml-small.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
			SizeLabel:   "~466 MB",
			Description: "Higher quality multilingual model.",
		},
		{
			ID:          "medium.en",
			Name:        "Medium (English)",
			FileName:    "ggml-medium.en.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.en.bin",
			SizeLabel:   "~1.5 GB",
			Description: "High quality, English-only.",
		},
		{
			ID:          "medium",
			Name:        "Medium (Multilingual)",
			FileName:    "ggml-medium.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
			SizeLabel:   "~1.5 GB",
			Description: "High quality multilingual model.",
		},
		{
			ID:          "large-v3",
			Name:        "Large v3",
			FileName:    "ggml-large-v3.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
			SizeLabel:   "~2.9 GB",
			Description: "Latest large multilingual model.",
		},
		{
			ID:          "large-v3-turbo",
			Name:        "Large v3 Turbo",
			FileName:    "ggml-large-v3-turbo.bin",
			URL:         "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo.bin",
			SizeLabel:   "~1.6 GB",
			Description: "Faster large-v3 variant.",
		},
	})
}
