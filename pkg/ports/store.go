package ports

import (
	"context"

	"github.com/aretw0/plancheck/pkg/domain"
)

// ReportStore defines the interface for persisting run reports.
type ReportStore interface {
	// Save persists the report under report.ID.
	Save(ctx context.Context, report domain.RunReport) error

	// Load retrieves the report for a given run ID.
	// Returns domain.ErrReportNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (domain.RunReport, error)

	// Delete removes the report for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored reports.
	List(ctx context.Context) ([]string, error)
}
