package interfaces

import (
	"context"

	"workflow_automation/domain/entities"
)

// RunHistory stores reports of finished runs
type RunHistory interface {
	// SaveReport appends a run report
	SaveReport(ctx context.Context, report entities.RunReport) error

	// ListReports returns up to limit reports, newest first. A limit of 0 returns all.
	ListReports(ctx context.Context, limit int) ([]entities.RunReport, error)
}
