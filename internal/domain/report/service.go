package report

import (
	"context"
	"time"
)

// ReportService aggregates attendance over calendar ranges
type ReportService interface {
	// GenerateAttendanceRangeReport builds a classified day grid per employee with summary counters
	GenerateAttendanceRangeReport(ctx context.Context, req AttendanceRangeReportRequest) (AttendanceRangeReport, error)

	// GetBranchToday summarizes today's attendance of every active employee of a branch
	GetBranchToday(ctx context.Context, branch string, now time.Time) (BranchTodaySummary, error)
}
