package attendance

import (
	"context"
	"time"
)

// AttendanceService defines the check-in/check-out policy operations.
type AttendanceService interface {
	// CheckIn opens the employee's day
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// NormalCheckout closes the day inside the half-day or full-day window
	NormalCheckout(ctx context.Context, req CheckoutRequest) (AttendanceResponse, error)

	// RequestEarlyCheckout closes the day at any time with a mandatory reason
	RequestEarlyCheckout(ctx context.Context, req EarlyCheckoutRequest) (AttendanceResponse, error)

	// GetToday returns today's record with its live classification
	GetToday(ctx context.Context, employeeID string, now time.Time) (TodayResponse, error)

	// GetHistory returns all records of the employee, newest first
	GetHistory(ctx context.Context, employeeID string) ([]AttendanceResponse, error)
}

// ReconciliationService finalizes days left open after check-in.
type ReconciliationService interface {
	// Reconcile closes every open record of today as Absent. Running it again
	// for the same day reconciles nothing.
	Reconcile(ctx context.Context, today time.Time) (ReconcileResult, error)
}
