package bootstrap

import (
	"testing"

	"transcribeasy/internal/domain"
	"transcribeasy/internal/jobs"
	"transcribeasy/internal/models"
)

// TestNormalizeSettingsDefaults verifies empty fields get usable defaults.
func TestNormalizeSettingsDefaults(t *testing.T) {
	got := normalizeSettings(domain.Settings{})

	if got.ModelDir == "" {
		t.Fatal("expected a default model dir")
	}
	if got.OutputDir == "" {
		t.Fatal("expected a default output dir")
	}
	if got.Language != "auto" {
		t.Fatalf("language = %q, want auto", got.Language)
	}
	if got.OutputFormat != domain.OutputFormatTxt {
		t.Fatalf("format = %q, want txt", got.OutputFormat)
	}
}

// TestNormalizeSettingsTrimsAndClamps verifies whitespace trimming and
// the segment-cap floor.
func TestNormalizeSettingsTrimsAndClamps(t *testing.T) {
	got := normalizeSettings(domain.Settings{
		ModelDir:        "  /models  ",
		OutputDir:       " /out ",
		Language:        " en ",
		OutputFormat:    domain.OutputFormat("weird"),
		MaxSegmentChars: -10,
	})

	if got.ModelDir != "/models" {
		t.Fatalf("model dir = %q", got.ModelDir)
	}
	if got.OutputDir != "/out" {
		t.Fatalf("output dir = %q", got.OutputDir)
	}
	if got.Language != "en" {
		t.Fatalf("language = %q", got.Language)
	}
	if got.OutputFormat != domain.OutputFormatTxt {
		t.Fatalf("format = %q, want txt fallback", got.OutputFormat)
	}
	if got.MaxSegmentChars != 0 {
		t.Fatalf("max segment chars = %d, want 0", got.MaxSegmentChars)
	}
}

// TestMapStageToStatus verifies pipeline stage names map to job statuses.
func TestMapStageToStatus(t *testing.T) {
	cases := map[string]domain.JobStatus{
		"preprocessing": domain.JobStatusPreprocessing,
		"transcribing":  domain.JobStatusTranscribing,
		"exporting":     domain.JobStatusExporting,
	}

	for stage, want := range cases {
		got, ok := mapStageToStatus(stage)
		if !ok || got != want {
			t.Fatalf("mapStageToStatus(%q) = %q, %v", stage, got, ok)
		}
	}

	if _, ok := mapStageToStatus("unknown"); ok {
		t.Fatal("unknown stage should not map")
	}
}

// TestPublishModelNotification verifies model changes land on the shared
// event bus with model fields populated.
func TestPublishModelNotification(t *testing.T) {
	app := &App{events: jobs.NewEventBus(10)}

	app.publishModelNotification(models.Notification{
		ModelID: "base.en",
		Record: domain.ModelRecord{
			State:    domain.ModelStateDownloading,
			Progress: 42,
		},
		AttemptID:     "attempt-1",
		ProgressKnown: true,
	})

	events := app.events.Since(0)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	event := events[0]
	if event.Type != jobs.EventTypeModel {
		t.Fatalf("type = %q, want model", event.Type)
	}
	if event.ModelID != "base.en" || event.ModelState != domain.ModelStateDownloading {
		t.Fatalf("unexpected model fields: %+v", event)
	}
	if event.Progress != 42 || !event.ProgressKnown || event.AttemptID != "attempt-1" {
		t.Fatalf("unexpected progress fields: %+v", event)
	}
}
