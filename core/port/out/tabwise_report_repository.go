package out

import (
	"context"
	"time"

	"tabwise_server/core/domain"
)

// OrganizeReport is the archived record of one organize run.
type OrganizeReport struct {
	ID               string                     `json:"id" bson:"_id"`
	StartedAt        time.Time                  `json:"started_at" bson:"started_at"`
	DurationMs       int64                      `json:"duration_ms" bson:"duration_ms"`
	TabCount         int                        `json:"tab_count" bson:"tab_count"`
	GroupsCreated    int                        `json:"groups_created" bson:"groups_created"`
	ClosedDuplicates int                        `json:"closed_duplicates" bson:"closed_duplicates"`
	Success          bool                       `json:"success" bson:"success"`
	Errors           []string                   `json:"errors,omitempty" bson:"errors,omitempty"`
	Groups           []domain.PlannedGroup      `json:"groups" bson:"groups"`
	Config           domain.SmartOrganizeConfig `json:"config" bson:"config"`
}

// ReportRepository archives organize-run reports for later inspection.
type ReportRepository interface {
	// SaveReport stores one run report.
	SaveReport(ctx context.Context, report *OrganizeReport) error

	// ListReports returns the most recent reports, newest first.
	ListReports(ctx context.Context, limit int) ([]OrganizeReport, error)
}
