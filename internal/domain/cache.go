package domain

import "context"

// ReportCache stores the single most recent consolidated report so external
// dashboards (or a second monitor instance) can read it without hitting the
// exchange. Only the latest snapshot is kept; history is never retained.
type ReportCache interface {
	SetLatest(ctx context.Context, report ConsolidatedReport) error
	// GetLatest returns ErrNoReport when no snapshot is cached.
	GetLatest(ctx context.Context) (ConsolidatedReport, error)
}
