package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the durable store of attendance records, one per
// (employee, date). Every mutating method is a single atomic conditional write
// on that key; the store is the only point where concurrent actions on the same
// employee and date serialize.
type AttendanceRepository interface {
	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// CheckIn creates the day's record, or fills the check-in of a record that
	// has none. Returns ErrAlreadyCheckedIn when a check-in is already recorded.
	CheckIn(ctx context.Context, record Record) (Record, error)

	// CloseOpen applies a checkout to the day's record only while it is open.
	// Returns ErrNoOpenCheckIn otherwise.
	CloseOpen(ctx context.Context, employeeID string, date time.Time, update CheckoutUpdate) (Record, error)

	// MarkAbsent closes the day's record as Absent only while it is open.
	// Returns ErrNoOpenCheckIn otherwise.
	MarkAbsent(ctx context.Context, employeeID string, date time.Time, reason string) (Record, error)

	// ListOpenThrough returns the records dated on or before date that are still open,
	// ordered by employee and ascending date.
	ListOpenThrough(ctx context.Context, date time.Time) ([]Record, error)

	// ListByEmployeesInRange returns records of the employees with from <= date <= to,
	// ordered by employee and ascending date.
	ListByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]Record, error)

	// ListByEmployee returns every record of the employee, newest first.
	ListByEmployee(ctx context.Context, employeeID string) ([]Record, error)
}
