package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
)

type ReconciliationServiceImpl struct {
	attendance.AttendanceRepository
	loc *time.Location
}

// Reconcile implements attendance.ReconciliationService.
func (r *ReconciliationServiceImpl) Reconcile(ctx context.Context, today time.Time) (attendance.ReconcileResult, error) {
	date := attendance.DateOf(today.In(r.loc))
	result := attendance.ReconcileResult{Date: date.Format(attendance.DateLayout)}

	// Earlier days are included so records a previous run failed on are retried.
	open, err := r.AttendanceRepository.ListOpenThrough(ctx, date)
	if err != nil {
		return result, fmt.Errorf("failed to list open attendances: %w", err)
	}
	result.Scanned = len(open)

	for _, rec := range open {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, err := r.AttendanceRepository.MarkAbsent(ctx, rec.EmployeeID, rec.Date, attendance.AbsentReasonNoCheckout)
		if err != nil {
			// Checked out between the scan and the update.
			if errors.Is(err, attendance.ErrNoOpenCheckIn) {
				continue
			}
			// The record stays open and is picked up by the next run.
			slog.Error("failed to reconcile attendance",
				"employee_id", rec.EmployeeID,
				"date", rec.Date.Format(attendance.DateLayout),
				"error", err,
			)
			result.Failed++
			continue
		}
		result.Reconciled++
	}

	slog.Info("attendance reconciliation finished",
		"date", result.Date,
		"scanned", result.Scanned,
		"reconciled", result.Reconciled,
		"failed", result.Failed,
	)

	return result, nil
}

func NewReconciliationService(attendanceRepo attendance.AttendanceRepository, loc *time.Location) attendance.ReconciliationService {
	if loc == nil {
		loc = time.Local
	}
	return &ReconciliationServiceImpl{
		AttendanceRepository: attendanceRepo,
		loc:                  loc,
	}
}
