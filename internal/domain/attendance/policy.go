package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Window is a half-open time-of-day range [Start, End).
type Window struct {
	Start ClockTime
	End   ClockTime
}

func (w Window) Contains(c ClockTime) bool {
	return c >= w.Start && c < w.End
}

func (w Window) String() string {
	return w.Start.String()[:5] + "-" + w.End.String()[:5]
}

// ShiftPolicy holds the half-day/full-day shift rules every check-in and
// checkout is gated by.
type ShiftPolicy struct {
	// Check-in opens here; checking in later requires a reason.
	GraceBoundary ClockTime
	// Nominal end of a full day, used for early-leave hours.
	ShiftEnd       ClockTime
	HalfDayWindow  Window
	FullDayWindow  Window
	HalfDayMinimum time.Duration
	// Late or early time beyond this turns a worked day into a half day.
	Tolerance time.Duration
}

var DefaultShiftPolicy = ShiftPolicy{
	GraceBoundary:  NewClockTime(9, 15, 0),
	ShiftEnd:       NewClockTime(18, 30, 0),
	HalfDayWindow:  Window{Start: NewClockTime(13, 0, 0), End: NewClockTime(14, 0, 0)},
	FullDayWindow:  Window{Start: NewClockTime(18, 30, 0), End: NewClockTime(19, 0, 0)},
	HalfDayMinimum: 4 * time.Hour,
	Tolerance:      2 * time.Hour,
}

// ValidateCheckIn gates a check-in at now. Exactly at the grace boundary no
// reason is needed.
func (p ShiftPolicy) ValidateCheckIn(now ClockTime, reason string) error {
	if now < p.GraceBoundary {
		return reject(ErrTooEarly, fmt.Sprintf("check-in is allowed only from %s", p.GraceBoundary))
	}
	if now > p.GraceBoundary && IsBlank(reason) {
		return reject(ErrMissingReason, fmt.Sprintf("check-in after %s requires a late reason", p.GraceBoundary))
	}
	return nil
}

// ValidateCheckout gates a normal checkout at now for a day opened at checkIn.
func (p ShiftPolicy) ValidateCheckout(checkIn, now ClockTime) error {
	switch {
	case p.FullDayWindow.Contains(now):
		return nil
	case p.HalfDayWindow.Contains(now):
		worked := WorkedDuration(checkIn, now)
		if worked < p.HalfDayMinimum {
			remaining := p.HalfDayMinimum - worked
			return &PolicyError{
				Err:       ErrInsufficientHours,
				Detail:    fmt.Sprintf("minimum %s required for half day, remaining: %s", FormatRemaining(p.HalfDayMinimum), FormatRemaining(remaining)),
				Remaining: remaining,
			}
		}
		return nil
	default:
		return reject(ErrOutsideWindow, fmt.Sprintf("normal checkout is allowed only %s (half day) or %s (full day)", p.HalfDayWindow, p.FullDayWindow))
	}
}

// ValidateEarlyCheckout gates an early-checkout request. Time of day never matters.
func (p ShiftPolicy) ValidateEarlyCheckout(reason string) error {
	if IsBlank(reason) {
		return reject(ErrMissingReason, "early checkout requires a reason")
	}
	return nil
}

// WorkedDuration is checkOut - checkIn, never negative.
func WorkedDuration(checkIn, checkOut ClockTime) time.Duration {
	d := checkOut.Sub(checkIn)
	if d < 0 {
		return 0
	}
	return d
}

// WorkedHours is the worked duration in hours with two-decimal precision.
func WorkedHours(checkIn, checkOut ClockTime) decimal.Decimal {
	seconds := int64(WorkedDuration(checkIn, checkOut) / time.Second)
	return decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600)).Round(2)
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
