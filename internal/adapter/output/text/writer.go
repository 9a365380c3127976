// Package text persists compiled reply bodies as plain-text files. The
// body is written exactly as compiled: it is already mail-ready, so no
// formatting happens here.
package text

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/masoncl/review-reply/internal/domain"
)

type clock func() string

// Writer persists report artifacts to disk.
type Writer struct {
	now clock
}

// NewWriter constructs a text writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a reply body to disk and returns the file path.
func (w *Writer) Write(ctx context.Context, artifact domain.ReportArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.txt",
		sanitise(artifact.Repository),
		shortSHA(artifact.SHA),
		w.now(),
	)
	path := filepath.Join(artifact.OutputDir, filename)

	if err := os.WriteFile(path, []byte(artifact.Body), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	if sha == "" {
		return "unknown"
	}
	return sha
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
