package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Outcome is the terminal result of one download attempt. A transfer
// reports exactly one outcome and never retries internally.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// partSuffix marks the in-flight temp file next to the destination.
const partSuffix = ".part"

const transferChunkSize = 64 * 1024

// Transfer streams one catalog model from its source URL to disk. The
// partially written temp file is left in place on cancellation and
// failure; cleaning it up is the orchestrator's job.
type Transfer struct {
	client    *http.Client
	userAgent string
}

// NewTransfer builds a transfer with no overall request timeout; the
// per-attempt context is the only cancellation source, and it also
// unblocks a stalled body read.
func NewTransfer() *Transfer {
	return &Transfer{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		userAgent: "transcribeasy",
	}
}

// NewTransferForTests builds a transfer around an injected HTTP client.
func NewTransferForTests(client *http.Client) *Transfer {
	return &Transfer{client: client, userAgent: "transcribeasy"}
}

// Run executes a single download attempt for entry into destPath.
//
// onProgress receives integer percentages, strictly increasing per call,
// and is invoked only when the response declares a total size. The final
// write lands via temp file plus rename, so destPath never holds a
// partial download.
func (t *Transfer) Run(ctx context.Context, entry CatalogEntry, destPath string, onProgress func(pct int)) (Outcome, error) {
	if entry.URL == "" {
		return OutcomeFailed, fmt.Errorf("model %s has no source URL", entry.ID)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return OutcomeFailed, fmt.Errorf("prepare destination directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entry.URL, nil)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeCancelled, ctx.Err()
		}
		return OutcomeFailed, fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return OutcomeFailed, fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	total := resp.ContentLength
	tmpPath := destPath + partSuffix
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("create temporary file: %w", err)
	}

	outcome, err := t.copyBody(ctx, resp.Body, file, total, onProgress)
	closeErr := file.Close()
	if outcome != OutcomeCompleted {
		return outcome, err
	}
	if closeErr != nil {
		return OutcomeFailed, fmt.Errorf("close destination file: %w", closeErr)
	}

	if err := os.Remove(destPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return OutcomeFailed, fmt.Errorf("remove old destination file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return OutcomeFailed, fmt.Errorf("move downloaded file into place: %w", err)
	}
	return OutcomeCompleted, nil
}

// copyBody streams response chunks into file, checking cancellation at
// every chunk boundary and emitting monotonic progress.
func (t *Transfer) copyBody(ctx context.Context, body io.Reader, file *os.File, total int64, onProgress func(pct int)) (Outcome, error) {
	buf := make([]byte, transferChunkSize)
	var received int64
	lastPct := -1

	for {
		if ctx.Err() != nil {
			return OutcomeCancelled, ctx.Err()
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return OutcomeFailed, fmt.Errorf("write destination file: %w", err)
			}
			received += int64(n)

			if total > 0 && onProgress != nil {
				pct := int(received * 100 / total)
				if pct > 100 {
					pct = 100
				}
				if pct > lastPct {
					lastPct = pct
					onProgress(pct)
				}
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return OutcomeCancelled, ctx.Err()
			}
			return OutcomeFailed, fmt.Errorf("read download stream: %w", readErr)
		}
	}

	if err := file.Sync(); err != nil {
		return OutcomeFailed, fmt.Errorf("flush destination file: %w", err)
	}
	if total > 0 && onProgress != nil && lastPct < 100 {
		onProgress(100)
	}
	return OutcomeCompleted, nil
}
