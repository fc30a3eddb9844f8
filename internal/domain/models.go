package domain

// ModelID names one whisper.cpp model preset from the built-in catalog.
// The catalog is closed; IDs are stable strings known at build time.
type ModelID string

// ModelState is the lifecycle state of one model asset on this machine.
type ModelState string

const (
	ModelStateNotPresent  ModelState = "not_present"
	ModelStateDownloading ModelState = "downloading"
	ModelStatePresent     ModelState = "present"
)

// ModelRecord is the persisted lifecycle state for one catalog model.
// Progress is meaningful only while downloading; it is pinned to 0 when
// not present and to 100 when present.
type ModelRecord struct {
	State    ModelState `json:"state"`
	Progress int        `json:"progress"`
}

// ModelOption joins one catalog preset with its current record for the UI.
type ModelOption struct {
	ID          ModelID    `json:"id"`
	Name        string     `json:"name"`
	FileName    string     `json:"fileName"`
	SizeLabel   string     `json:"sizeLabel,omitempty"`
	Description string     `json:"description,omitempty"`
	State       ModelState `json:"state"`
	Progress    int        `json:"progress"`
	LocalPath   string     `json:"localPath,omitempty"`
}
