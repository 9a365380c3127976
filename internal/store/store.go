package store

import (
	"context"
	"time"
)

// Store defines the persistence layer interface for the report archive.
type Store interface {
	// SaveReport archives one compiled reply.
	SaveReport(ctx context.Context, report ReportRecord) error

	// GetReport retrieves an archived reply by ID.
	GetReport(ctx context.Context, reportID string) (ReportRecord, error)

	// ListReports retrieves the most recent replies, newest first.
	ListReports(ctx context.Context, limit int) ([]ReportRecord, error)

	// ListReportsBySHA retrieves every archived reply for a commit,
	// newest first. Recompiles of the same commit keep their own rows.
	ListReportsBySHA(ctx context.Context, sha string) ([]ReportRecord, error)

	// Close closes the underlying database.
	Close() error
}

// ReportRecord is one archived reply with the facts needed to audit it
// later: what commit it answered, which subsystems it touched, how many
// findings anchored, and the input hash witnessing idempotence.
type ReportRecord struct {
	ReportID   string
	SHA        string
	Repository string
	Subject    string
	Subsystems []string
	Anchored   int
	Unanchored int
	InputHash  string
	Body       string
	CreatedAt  time.Time
}
