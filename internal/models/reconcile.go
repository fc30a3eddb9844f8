package models

import (
	"os"

	"go.uber.org/zap"

	"transcribeasy/internal/domain"
)

// Reconciler repairs drift between persisted model records and the files
// actually on disk. It runs once at startup, before any user intent is
// accepted, and is idempotent: a second pass over its own output changes
// nothing.
type Reconciler struct {
	store    StatusStore
	catalog  *Catalog
	modelDir string
	logger   *zap.Logger
	stat     func(name string) (os.FileInfo, error)
}

// NewReconciler builds a reconciler over the given store and model dir.
func NewReconciler(store StatusStore, catalog *Catalog, modelDir string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		store:    store,
		catalog:  catalog,
		modelDir: modelDir,
		logger:   logger,
		stat:     os.Stat,
	}
}

// Run loads the record set, downgrades records that disk cannot back, and
// persists the corrected set once if anything changed.
//
// A record claiming present without a nonzero file is stale; a record
// claiming downloading is always stale because no live stream survives a
// restart.
func (r *Reconciler) Run() (map[domain.ModelID]domain.ModelRecord, error) {
	records := r.store.Load()
	dirty := false

	for id, record := range records {
		entry, ok := r.catalog.Lookup(id)
		if !ok {
			continue
		}

		switch record.State {
		case domain.ModelStateDownloading:
			records[id] = domain.ModelRecord{State: domain.ModelStateNotPresent}
			dirty = true
			r.logger.Info("reset interrupted download",
				zap.String("model", string(id)))
		case domain.ModelStatePresent:
			if !r.fileUsable(entry.PathIn(r.modelDir)) {
				records[id] = domain.ModelRecord{State: domain.ModelStateNotPresent}
				dirty = true
				r.logger.Info("downgraded missing model file",
					zap.String("model", string(id)),
					zap.String("path", entry.PathIn(r.modelDir)))
			}
		}
	}

	if dirty {
		if err := r.store.Save(records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// fileUsable reports whether path exists as a regular file with data.
func (r *Reconciler) fileUsable(path string) bool {
	info, err := r.stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
