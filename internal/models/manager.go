package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/disk"
	"go.uber.org/zap"

	"transcribeasy/internal/domain"
)

// ErrUnknownModel is returned for IDs outside the catalog.
var ErrUnknownModel = errors.New("unknown model")

// ErrModelNotPresent is returned when a path is requested for a model
// that is not fully downloaded. Callers check state first.
var ErrModelNotPresent = errors.New("model is not present")

// minFreeBytes is the free-space floor below which new downloads are
// refused rather than started.
const minFreeBytes = 512 << 20

// Notification is one published state or progress change for a model.
type Notification struct {
	ModelID       domain.ModelID     `json:"modelId"`
	Record        domain.ModelRecord `json:"record"`
	AttemptID     string             `json:"attemptId,omitempty"`
	ProgressKnown bool               `json:"progressKnown"`
}

// Listener receives notifications in publish order. It is invoked with
// the manager lock held and must not call back into the manager.
type Listener func(n Notification)

// transferHandle tracks one in-flight download. It exists only while the
// transfer runs and is the sole cancellation signal for it. settled
// guards the revert/complete bookkeeping so the explicit-cancel path and
// the controller outcome path apply it exactly once.
type transferHandle struct {
	attemptID string
	cancel    context.CancelFunc
	settled   bool
}

// Manager is the lifecycle orchestrator for catalog models. It is the
// only writer of the status store, serializes all record mutations, and
// allows at most one live transfer per model while transfers for
// different models proceed independently.
type Manager struct {
	logger   *zap.Logger
	catalog  *Catalog
	store    StatusStore
	modelDir string
	transfer *Transfer

	notifyInterval time.Duration
	minFree        uint64
	diskFree       func(path string) (uint64, error)

	mu       sync.Mutex
	ready    bool
	records  map[domain.ModelID]domain.ModelRecord
	active   map[domain.ModelID]*transferHandle
	listener Listener
	wg       sync.WaitGroup
}

// NewManager builds a manager over the given store and model directory.
func NewManager(store StatusStore, catalog *Catalog, modelDir string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:         logger,
		catalog:        catalog,
		store:          store,
		modelDir:       modelDir,
		transfer:       NewTransfer(),
		notifyInterval: defaultNotifyInterval,
		minFree:        minFreeBytes,
		diskFree: func(path string) (uint64, error) {
			usage, err := disk.Usage(path)
			if err != nil {
				return 0, err
			}
			return usage.Free, nil
		},
		records: catalog.Defaults(),
		active:  make(map[domain.ModelID]*transferHandle),
	}
}

// NewManagerForTests builds a manager with injectable transfer, notify
// interval, and free-space probe. A nil diskFree disables the preflight.
func NewManagerForTests(
	store StatusStore,
	catalog *Catalog,
	modelDir string,
	logger *zap.Logger,
	transfer *Transfer,
	notifyInterval time.Duration,
	diskFree func(path string) (uint64, error),
) *Manager {
	m := NewManager(store, catalog, modelDir, logger)
	if transfer != nil {
		m.transfer = transfer
	}
	m.notifyInterval = notifyInterval
	m.diskFree = diskFree
	return m
}

// SetListener registers the snapshot subscriber. Call before Reconcile.
func (m *Manager) SetListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// Reconcile runs the startup disk reconciliation and opens the manager
// for intents. It runs the repair at most once; later calls are no-ops.
func (m *Manager) Reconcile() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}

	records, err := NewReconciler(m.store, m.catalog, m.modelDir, m.logger).Run()
	if err != nil {
		return fmt.Errorf("reconcile model records: %w", err)
	}
	m.records = records
	m.ready = true
	return nil
}

// Snapshot returns a copy of the current record set.
func (m *Manager) Snapshot() map[domain.ModelID]domain.ModelRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[domain.ModelID]domain.ModelRecord, len(m.records))
	for id, record := range m.records {
		out[id] = record
	}
	return out
}

// Options returns every catalog preset joined with its current record,
// in catalog order, for UI rendering.
func (m *Manager) Options() []domain.ModelOption {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.catalog.Entries()
	options := make([]domain.ModelOption, 0, len(entries))
	for _, entry := range entries {
		record := m.records[entry.ID]
		option := domain.ModelOption{
			ID:          entry.ID,
			Name:        entry.Name,
			FileName:    entry.FileName,
			SizeLabel:   entry.SizeLabel,
			Description: entry.Description,
			State:       record.State,
			Progress:    record.Progress,
		}
		if record.State == domain.ModelStatePresent {
			option.LocalPath = entry.PathIn(m.modelDir)
		}
		options = append(options, option)
	}
	return options
}

// PathFor resolves the on-disk file for a present model. Requesting the
// path for any other state is a contract violation and returns
// ErrModelNotPresent.
func (m *Manager) PathFor(id domain.ModelID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.catalog.Lookup(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	if m.records[id].State != domain.ModelStatePresent {
		return "", fmt.Errorf("%w: %s", ErrModelNotPresent, id)
	}
	return entry.PathIn(m.modelDir), nil
}

// RequestDownload starts a download for id. The intent is ignored when
// the model is unknown, already downloading, already present, or the
// manager has not reconciled yet.
func (m *Manager) RequestDownload(id domain.ModelID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready {
		m.logger.Warn("download intent before reconcile", zap.String("model", string(id)))
		return
	}
	entry, ok := m.catalog.Lookup(id)
	if !ok {
		m.logger.Warn("download intent for unknown model", zap.String("model", string(id)))
		return
	}
	if _, busy := m.active[id]; busy {
		return
	}
	if m.records[id].State != domain.ModelStateNotPresent {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &transferHandle{attemptID: uuid.NewString(), cancel: cancel}
	m.active[id] = handle
	m.setRecordLocked(id, domain.ModelRecord{State: domain.ModelStateDownloading}, handle, false)

	m.wg.Add(1)
	go m.runTransfer(ctx, entry, handle)
}

// RequestCancel cancels an in-flight download for id. The record reverts
// synchronously; the transfer goroutine observes the signal at its next
// chunk boundary and cleans up the partial file.
func (m *Manager) RequestCancel(id domain.ModelID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handle, ok := m.active[id]
	if !ok {
		return
	}

	handle.cancel()
	if !handle.settled {
		handle.settled = true
		m.setRecordLocked(id, domain.ModelRecord{State: domain.ModelStateNotPresent}, handle, false)
	}
}

// RequestDelete removes a present model from disk and reverts its
// record. Ignored while a download is in flight or when nothing is
// present; records are never deleted, only reverted.
func (m *Manager) RequestDelete(id domain.ModelID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.catalog.Lookup(id)
	if !ok {
		return
	}
	if _, busy := m.active[id]; busy {
		return
	}
	if m.records[id].State != domain.ModelStatePresent {
		return
	}

	m.removeModelFilesLocked(entry)
	m.setRecordLocked(id, domain.ModelRecord{State: domain.ModelStateNotPresent}, nil, false)
}

// NoteExternalRemoval downgrades a present record whose file vanished
// outside the app, e.g. the user deleted it in a file manager.
func (m *Manager) NoteExternalRemoval(id domain.ModelID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.ready {
		return
	}
	entry, ok := m.catalog.Lookup(id)
	if !ok {
		return
	}
	if _, busy := m.active[id]; busy {
		return
	}
	if m.records[id].State != domain.ModelStatePresent {
		return
	}
	if info, err := os.Stat(entry.PathIn(m.modelDir)); err == nil && !info.IsDir() && info.Size() > 0 {
		return
	}

	m.logger.Info("model file removed externally", zap.String("model", string(id)))
	m.setRecordLocked(id, domain.ModelRecord{State: domain.ModelStateNotPresent}, nil, false)
}

// Close cancels all in-flight transfers and waits for them to settle.
func (m *Manager) Close() {
	m.mu.Lock()
	for _, handle := range m.active {
		handle.cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// runTransfer drives one download attempt to its terminal outcome.
func (m *Manager) runTransfer(ctx context.Context, entry CatalogEntry, handle *transferHandle) {
	defer m.wg.Done()

	if err := m.preflight(); err != nil {
		m.finishTransfer(entry, handle, OutcomeFailed, err)
		return
	}

	throttle := NewProgressThrottle(m.notifyInterval)
	dest := entry.PathIn(m.modelDir)
	outcome, err := m.transfer.Run(ctx, entry, dest, func(pct int) {
		m.noteProgress(entry.ID, handle, throttle, pct)
	})
	m.finishTransfer(entry, handle, outcome, err)
}

// preflight refuses a download when free space is clearly insufficient.
// A failing probe is logged and does not block the attempt.
func (m *Manager) preflight() error {
	if m.diskFree == nil {
		return nil
	}
	free, err := m.diskFree(m.modelDir)
	if err != nil {
		m.logger.Warn("free-space probe failed", zap.Error(err))
		return nil
	}
	if free < m.minFree {
		return fmt.Errorf("insufficient free space: %d bytes available", free)
	}
	return nil
}

// noteProgress records the computed percentage and emits a throttled
// notification. The in-memory record stays accurate even when the
// notification is suppressed.
func (m *Manager) noteProgress(id domain.ModelID, handle *transferHandle, throttle *ProgressThrottle, pct int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handle.settled {
		return
	}
	record := m.records[id]
	if record.State != domain.ModelStateDownloading || pct <= record.Progress {
		return
	}

	record.Progress = pct
	if !throttle.Allow() {
		m.records[id] = record
		return
	}
	m.setRecordLocked(id, record, handle, true)
}

// finishTransfer applies the terminal outcome, releases the handle, and
// cleans up files the attempt left behind. The revert is idempotent with
// an explicit cancel that may already have settled the record.
func (m *Manager) finishTransfer(entry CatalogEntry, handle *transferHandle, outcome Outcome, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.active, entry.ID)
	alreadySettled := handle.settled
	handle.settled = true

	switch outcome {
	case OutcomeCompleted:
		if alreadySettled {
			// Cancel won the race after the file landed; honor the cancel.
			m.removeModelFilesLocked(entry)
			return
		}
		m.setRecordLocked(entry.ID, domain.ModelRecord{State: domain.ModelStatePresent, Progress: 100}, handle, true)
	case OutcomeCancelled:
		m.removePartFileLocked(entry)
		m.logger.Info("download cancelled", zap.String("model", string(entry.ID)))
		if !alreadySettled {
			m.setRecordLocked(entry.ID, domain.ModelRecord{State: domain.ModelStateNotPresent}, handle, false)
		}
	default:
		m.removePartFileLocked(entry)
		m.logger.Error("download failed",
			zap.String("model", string(entry.ID)), zap.Error(err))
		if !alreadySettled {
			m.setRecordLocked(entry.ID, domain.ModelRecord{State: domain.ModelStateNotPresent}, handle, false)
		}
	}
}

// setRecordLocked mutates one record, persists the full set, and
// notifies the listener. Callers hold m.mu.
func (m *Manager) setRecordLocked(id domain.ModelID, record domain.ModelRecord, handle *transferHandle, progressKnown bool) {
	m.records[id] = record
	if err := m.store.Save(m.records); err != nil {
		m.logger.Error("persist model records", zap.Error(err))
	}
	if m.listener != nil {
		n := Notification{ModelID: id, Record: record, ProgressKnown: progressKnown}
		if handle != nil {
			n.AttemptID = handle.attemptID
		}
		m.listener(n)
	}
}

// removeModelFilesLocked removes the destination file and any leftover
// temp file, best effort.
func (m *Manager) removeModelFilesLocked(entry CatalogEntry) {
	dest := entry.PathIn(m.modelDir)
	for _, path := range []string{dest, dest + partSuffix} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.logger.Warn("remove model file", zap.String("path", path), zap.Error(err))
		}
	}
}

// removePartFileLocked removes the in-flight temp file, best effort.
func (m *Manager) removePartFileLocked(entry CatalogEntry) {
	path := entry.PathIn(m.modelDir) + partSuffix
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("remove partial file", zap.String("path", path), zap.Error(err))
	}
}
