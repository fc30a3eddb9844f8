package models

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"transcribeasy/internal/domain"
)

// StatusStore persists the per-model lifecycle records.
//
// Load never fails: a missing or unreadable file yields the catalog
// defaults so that corruption cannot block startup. Save replaces the
// whole record set; readers observe either the old set or the new one.
type StatusStore interface {
	Load() map[domain.ModelID]domain.ModelRecord
	Save(records map[domain.ModelID]domain.ModelRecord) error
}

// JSONStatusStore keeps the record set in a single JSON file.
type JSONStatusStore struct {
	path    string
	catalog *Catalog
	logger  *zap.Logger
}

// NewJSONStatusStore creates a JSON-backed status store for the catalog.
func NewJSONStatusStore(path string, catalog *Catalog, logger *zap.Logger) *JSONStatusStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONStatusStore{path: path, catalog: catalog, logger: logger}
}

// Load reads the record set from disk. Unknown model IDs and unknown JSON
// fields are ignored; missing IDs are filled with defaults; malformed
// content falls back to defaults entirely.
func (s *JSONStatusStore) Load() map[domain.ModelID]domain.ModelRecord {
	records := s.catalog.Defaults()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("model status unreadable, using defaults",
				zap.String("path", s.path), zap.Error(err))
		}
		return records
	}

	var stored map[domain.ModelID]domain.ModelRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("model status corrupt, using defaults",
			zap.String("path", s.path), zap.Error(err))
		return records
	}

	for id, record := range stored {
		if _, known := s.catalog.Lookup(id); !known {
			continue
		}
		records[id] = normalizeRecord(record)
	}
	return records
}

// Save writes the full record set atomically via a temp file rename.
func (s *JSONStatusStore) Save(records map[domain.ModelID]domain.ModelRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// normalizeRecord clamps progress and rejects unknown states, pinning
// progress to the value its state implies for settled records.
func normalizeRecord(record domain.ModelRecord) domain.ModelRecord {
	switch record.State {
	case domain.ModelStatePresent:
		return domain.ModelRecord{State: domain.ModelStatePresent, Progress: 100}
	case domain.ModelStateDownloading:
		if record.Progress < 0 {
			record.Progress = 0
		}
		if record.Progress > 100 {
			record.Progress = 100
		}
		return record
	default:
		return domain.ModelRecord{State: domain.ModelStateNotPresent}
	}
}
