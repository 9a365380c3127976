package store

import (
	"context"

	"github.com/masoncl/review-reply/internal/store"
	"github.com/masoncl/review-reply/internal/usecase/report"
)

// Bridge adapts store.Store to the report.Store port.
// This avoids circular dependencies between packages.
type Bridge struct {
	store store.Store
}

// NewBridge creates a new store adapter.
func NewBridge(s store.Store) *Bridge {
	return &Bridge{store: s}
}

// SaveReport converts and archives a report entry.
func (b *Bridge) SaveReport(ctx context.Context, entry report.ReportEntry) error {
	record := store.ReportRecord{
		ReportID:   entry.ReportID,
		SHA:        entry.SHA,
		Repository: entry.Repository,
		Subject:    entry.Subject,
		Subsystems: entry.Subsystems,
		Anchored:   entry.Anchored,
		Unanchored: entry.Unanchored,
		InputHash:  entry.InputHash,
		Body:       entry.Body,
		CreatedAt:  entry.CreatedAt,
	}
	return b.store.SaveReport(ctx, record)
}

// ListReports retrieves recent archived replies, newest first.
func (b *Bridge) ListReports(ctx context.Context, limit int) ([]report.ReportEntry, error) {
	records, err := b.store.ListReports(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]report.ReportEntry, len(records))
	for i, r := range records {
		entries[i] = report.ReportEntry{
			ReportID:   r.ReportID,
			SHA:        r.SHA,
			Repository: r.Repository,
			Subject:    r.Subject,
			Subsystems: r.Subsystems,
			Anchored:   r.Anchored,
			Unanchored: r.Unanchored,
			InputHash:  r.InputHash,
			Body:       r.Body,
			CreatedAt:  r.CreatedAt,
		}
	}
	return entries, nil
}

// Close closes the underlying store.
func (b *Bridge) Close() error {
	return b.store.Close()
}
