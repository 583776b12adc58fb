package attendance

import (
	"errors"
	"fmt"
	"time"
)

// Attendance domain errors
var (
	// Policy errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNoOpenCheckIn     = errors.New("you have no open check-in today")
	ErrTooEarly          = errors.New("too early to check in")
	ErrOutsideWindow     = errors.New("outside the allowed checkout windows")
	ErrInsufficientHours = errors.New("not enough worked hours for a half-day checkout")
	ErrMissingReason     = errors.New("a reason is required")

	// General errors
	ErrInvalidRecord = errors.New("invalid attendance record")
)

// PolicyError is a rejected attendance action. It unwraps to one of the policy
// sentinel errors above.
type PolicyError struct {
	Err       error
	Detail    string
	Remaining time.Duration
}

func (e *PolicyError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

func reject(err error, detail string) *PolicyError {
	return &PolicyError{Err: err, Detail: detail}
}

// FormatRemaining renders a duration as "Xh Ym", rounded to the minute.
func FormatRemaining(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
