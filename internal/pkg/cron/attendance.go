package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
)

// DefaultReconcileSchedule runs reconciliation one minute before local midnight.
const DefaultReconcileSchedule = "59 23 * * *"

type AttendanceJobs struct {
	reconciler attendance.ReconciliationService
	now        func() time.Time
}

func NewAttendanceJobs(reconciler attendance.ReconciliationService) *AttendanceJobs {
	return &AttendanceJobs{
		reconciler: reconciler,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	if spec == "" {
		spec = DefaultReconcileSchedule
	}
	return scheduler.AddJob("reconcile_open_attendances", spec, j.ReconcileOpenAttendances)
}

// ReconcileOpenAttendances marks today's records without a checkout as Absent.
func (j *AttendanceJobs) ReconcileOpenAttendances(ctx context.Context) error {
	_, err := j.reconciler.Reconcile(ctx, j.now())
	return err
}
