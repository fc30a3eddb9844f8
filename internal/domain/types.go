package domain

// JobStatus tracks each pipeline stage for a single transcription job.
type JobStatus string

const (
	JobStatusIdle          JobStatus = "idle"
	JobStatusPreprocessing JobStatus = "preprocessing"
	JobStatusTranscribing  JobStatus = "transcribing"
	JobStatusExporting     JobStatus = "exporting"
	JobStatusDone          JobStatus = "done"
	JobStatusFailed        JobStatus = "failed"
	JobStatusCancelled     JobStatus = "cancelled"
)

// OutputFormat selects which transcript artifacts a job exports.
type OutputFormat string

const (
	OutputFormatTxt  OutputFormat = "txt"
	OutputFormatSrt  OutputFormat = "srt"
	OutputFormatBoth OutputFormat = "both"
)

// Settings contains user-selectable runtime configuration.
type Settings struct {
	ModelDir        string       `json:"modelDir"`
	SelectedModel   ModelID      `json:"selectedModel"`
	OutputDir       string       `json:"outputDir"`
	Language        string       `json:"language"`
	OutputFormat    OutputFormat `json:"outputFormat"`
	MaxSegmentChars int          `json:"maxSegmentChars"`
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}
