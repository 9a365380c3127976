package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/masoncl/review-reply/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates the reports table and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per compiled reply
	CREATE TABLE IF NOT EXISTS reports (
		report_id TEXT PRIMARY KEY,
		sha TEXT NOT NULL,
		repository TEXT NOT NULL,
		subject TEXT NOT NULL,
		subsystems TEXT NOT NULL DEFAULT '',
		anchored INTEGER NOT NULL DEFAULT 0,
		unanchored INTEGER NOT NULL DEFAULT 0,
		input_hash TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_sha ON reports(sha);
	CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveReport archives one compiled reply.
func (s *Store) SaveReport(ctx context.Context, report store.ReportRecord) error {
	query := `
		INSERT INTO reports (report_id, sha, repository, subject, subsystems, anchored, unanchored, input_hash, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		report.ReportID,
		report.SHA,
		report.Repository,
		report.Subject,
		store.JoinSubsystems(report.Subsystems),
		report.Anchored,
		report.Unanchored,
		report.InputHash,
		report.Body,
		report.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

// GetReport retrieves a report by ID.
func (s *Store) GetReport(ctx context.Context, reportID string) (store.ReportRecord, error) {
	query := `
		SELECT report_id, sha, repository, subject, subsystems, anchored, unanchored, input_hash, body, created_at
		FROM reports
		WHERE report_id = ?
	`

	record, err := scanReport(s.db.QueryRowContext(ctx, query, reportID))
	if err != nil {
		if err == sql.ErrNoRows {
			return store.ReportRecord{}, fmt.Errorf("report not found: %s", reportID)
		}
		return store.ReportRecord{}, fmt.Errorf("failed to get report: %w", err)
	}
	return record, nil
}

// ListReports retrieves the most recent reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]store.ReportRecord, error) {
	query := `
		SELECT report_id, sha, repository, subject, subsystems, anchored, unanchored, input_hash, body, created_at
		FROM reports
		ORDER BY created_at DESC, report_id DESC
		LIMIT ?
	`
	return s.queryReports(ctx, query, limit)
}

// ListReportsBySHA retrieves every archived reply for a commit, newest
// first.
func (s *Store) ListReportsBySHA(ctx context.Context, sha string) ([]store.ReportRecord, error) {
	query := `
		SELECT report_id, sha, repository, subject, subsystems, anchored, unanchored, input_hash, body, created_at
		FROM reports
		WHERE sha = ?
		ORDER BY created_at DESC, report_id DESC
	`
	return s.queryReports(ctx, query, sha)
}

func (s *Store) queryReports(ctx context.Context, query string, args ...interface{}) ([]store.ReportRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []store.ReportRecord
	for rows.Next() {
		record, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}

	return reports, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (store.ReportRecord, error) {
	var record store.ReportRecord
	var subsystems string
	var createdAt int64

	if err := row.Scan(
		&record.ReportID,
		&record.SHA,
		&record.Repository,
		&record.Subject,
		&subsystems,
		&record.Anchored,
		&record.Unanchored,
		&record.InputHash,
		&record.Body,
		&createdAt,
	); err != nil {
		return store.ReportRecord{}, err
	}

	record.Subsystems = store.SplitSubsystems(subsystems)
	record.CreatedAt = time.Unix(createdAt, 0).UTC()
	return record, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
