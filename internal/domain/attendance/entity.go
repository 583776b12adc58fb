package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DayStatus is the classification of one employee work-day.
type DayStatus string

const (
	StatusPresent    DayStatus = "Present"
	StatusHalfDay    DayStatus = "HalfDay"
	StatusAbsent     DayStatus = "Absent"
	StatusHoliday    DayStatus = "Holiday"
	StatusWeekendOff DayStatus = "WeekendOff"
)

const AbsentReasonNoCheckout = "No checkout after check-in"

// Record is the attendance of one employee on one date. (EmployeeID, Date) is unique.
type Record struct {
	ID                  string
	EmployeeID          string
	Date                time.Time
	CheckIn             *ClockTime
	CheckOut            *ClockTime
	WorkedHours         *decimal.Decimal
	LateReason          *string
	EarlyCheckoutReason *string
	RequestedAt         *ClockTime
	IsEarlyCheckout     bool

	// Terminal marker, written only by reconciliation.
	Status       *DayStatus
	AbsentReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the employee checked in and the day has not been closed.
func (r Record) IsOpen() bool {
	return r.CheckIn != nil && r.CheckOut == nil && r.Status == nil
}

// IsReconciled reports whether reconciliation closed the day.
func (r Record) IsReconciled() bool {
	return r.Status != nil
}

// Validate checks the record invariants. Stores call it before every write.
func (r Record) Validate() error {
	if r.EmployeeID == "" {
		return fmt.Errorf("%w: employee id is required", ErrInvalidRecord)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidRecord)
	}
	if r.CheckOut != nil && r.CheckIn == nil {
		return fmt.Errorf("%w: check-out without check-in", ErrInvalidRecord)
	}
	if r.WorkedHours != nil && r.WorkedHours.IsNegative() {
		return fmt.Errorf("%w: worked hours must not be negative", ErrInvalidRecord)
	}

	bothTimes := r.CheckIn != nil && r.CheckOut != nil
	if r.Status != nil {
		if r.CheckOut != nil {
			return fmt.Errorf("%w: reconciled record must not have a check-out", ErrInvalidRecord)
		}
		if r.WorkedHours == nil || !r.WorkedHours.IsZero() {
			return fmt.Errorf("%w: reconciled record must carry zero worked hours", ErrInvalidRecord)
		}
	} else if bothTimes != (r.WorkedHours != nil) {
		return fmt.Errorf("%w: worked hours must be set exactly when both times are set", ErrInvalidRecord)
	}

	if r.IsEarlyCheckout && (r.CheckOut == nil || r.EarlyCheckoutReason == nil) {
		return fmt.Errorf("%w: early checkout requires a check-out and a reason", ErrInvalidRecord)
	}

	return nil
}

// CheckoutUpdate carries the fields written when a day is closed by a checkout.
type CheckoutUpdate struct {
	CheckOut            ClockTime
	WorkedHours         decimal.Decimal
	IsEarlyCheckout     bool
	EarlyCheckoutReason *string
	RequestedAt         *ClockTime
}

func (u CheckoutUpdate) Validate() error {
	if u.WorkedHours.IsNegative() {
		return fmt.Errorf("%w: worked hours must not be negative", ErrInvalidRecord)
	}
	if u.IsEarlyCheckout && u.EarlyCheckoutReason == nil {
		return fmt.Errorf("%w: early checkout requires a reason", ErrInvalidRecord)
	}
	return nil
}

// Apply returns a copy of r closed with u.
func (u CheckoutUpdate) Apply(r Record) Record {
	checkOut := u.CheckOut
	worked := u.WorkedHours
	r.CheckOut = &checkOut
	r.WorkedHours = &worked
	r.IsEarlyCheckout = u.IsEarlyCheckout
	r.EarlyCheckoutReason = u.EarlyCheckoutReason
	r.RequestedAt = u.RequestedAt
	return r
}

// MarkAbsent returns a copy of r closed by reconciliation.
func MarkAbsent(r Record, reason string) Record {
	status := StatusAbsent
	zero := decimal.Zero
	r.CheckOut = nil
	r.WorkedHours = &zero
	r.IsEarlyCheckout = false
	r.EarlyCheckoutReason = nil
	r.RequestedAt = nil
	r.Status = &status
	r.AbsentReason = &reason
	return r
}
