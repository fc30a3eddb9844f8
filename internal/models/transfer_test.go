package models

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTransferRunSuccess verifies a full download lands atomically with
// monotonic progress ending at 100.
func TestTransferRunSuccess(t *testing.T) {
	payload := bytes.Repeat([]byte("whisper"), 40_000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "transcribeasy", r.Header.Get("User-Agent"))
		w.Write(payload)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ggml-alpha.bin")
	entry := CatalogEntry{ID: "alpha", FileName: "ggml-alpha.bin", URL: server.URL}

	var pcts []int
	outcome, err := NewTransferForTests(server.Client()).Run(
		context.Background(), entry, dest,
		func(pct int) { pcts = append(pcts, pct) })
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, outcome)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	_, err = os.Stat(dest + partSuffix)
	require.True(t, os.IsNotExist(err), "temp file should be gone")

	require.NotEmpty(t, pcts)
	require.Equal(t, 100, pcts[len(pcts)-1])
	for i := 1; i < len(pcts); i++ {
		require.Greater(t, pcts[i], pcts[i-1])
	}
}

// TestTransferRunHTTPError verifies non-2xx responses fail the attempt.
func TestTransferRunHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ggml-alpha.bin")
	entry := CatalogEntry{ID: "alpha", URL: server.URL}

	outcome, err := NewTransferForTests(server.Client()).Run(context.Background(), entry, dest, nil)
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, outcome)

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr))
}

// TestTransferRunEmptyURL verifies entries without a source URL fail
// before any network activity.
func TestTransferRunEmptyURL(t *testing.T) {
	entry := CatalogEntry{ID: "alpha"}
	outcome, err := NewTransferForTests(http.DefaultClient).Run(
		context.Background(), entry, filepath.Join(t.TempDir(), "x.bin"), nil)
	require.Error(t, err)
	require.Equal(t, OutcomeFailed, outcome)
}

// TestTransferRunCancelledMidStream verifies cancellation mid-body stops
// the attempt, leaves the temp file, and never creates the destination.
func TestTransferRunCancelledMidStream(t *testing.T) {
	firstChunkSent := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		w.Write(bytes.Repeat([]byte("x"), 200_000))
		w.(http.Flusher).Flush()
		close(firstChunkSent)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-firstChunkSent
		cancel()
	}()

	dest := filepath.Join(t.TempDir(), "ggml-alpha.bin")
	entry := CatalogEntry{ID: "alpha", URL: server.URL}

	outcome, err := NewTransferForTests(server.Client()).Run(ctx, entry, dest, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, OutcomeCancelled, outcome)

	_, statErr := os.Stat(dest)
	require.True(t, os.IsNotExist(statErr), "destination must not exist after cancel")

	info, statErr := os.Stat(dest + partSuffix)
	require.NoError(t, statErr, "temp file is left for the orchestrator to clean up")
	require.Positive(t, info.Size())
}

// TestTransferRunUnknownLength verifies a chunked response without a
// declared size completes silently, without progress callbacks.
func TestTransferRunUnknownLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		w.Write([]byte("streamed-model-data"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ggml-alpha.bin")
	entry := CatalogEntry{ID: "alpha", URL: server.URL}

	var calls int
	outcome, err := NewTransferForTests(server.Client()).Run(
		context.Background(), entry, dest,
		func(int) { calls++ })
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, outcome)
	require.Zero(t, calls)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, []byte("streamed-model-data"), got)
}

// TestTransferRunOverwritesExisting verifies an old destination file is
// replaced by a fresh download.
func TestTransferRunOverwritesExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("new-model"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ggml-alpha.bin")
	require.NoError(t, os.WriteFile(dest, []byte("old-model"), 0o644))

	entry := CatalogEntry{ID: "alpha", URL: server.URL}
	outcome, err := NewTransferForTests(server.Client()).Run(context.Background(), entry, dest, nil)
	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, outcome)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, []byte("new-model"), got)
}
