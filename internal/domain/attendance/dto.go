package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	LateReason string    `json:"late_reason"`
	Now        time.Time `json:"-" validate:"required"`
}

func (r *CheckInRequest) Validate() error {
	return validator.Struct(r)
}

type CheckoutRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	Now        time.Time `json:"-" validate:"required"`
}

func (r *CheckoutRequest) Validate() error {
	return validator.Struct(r)
}

// EarlyCheckoutRequest is checked for a blank reason by the policy, not here,
// so the caller gets ErrMissingReason.
type EarlyCheckoutRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required"`
	Reason     string    `json:"reason"`
	Now        time.Time `json:"-" validate:"required"`
}

func (r *EarlyCheckoutRequest) Validate() error {
	return validator.Struct(r)
}

type AttendanceResponse struct {
	ID                  string   `json:"id"`
	EmployeeID          string   `json:"employee_id"`
	Date                string   `json:"date"`
	CheckInTime         *string  `json:"check_in_time"`
	CheckOutTime        *string  `json:"check_out_time"`
	WorkedHours         *float64 `json:"worked_hours"`
	LateReason          *string  `json:"late_reason"`
	EarlyCheckoutReason *string  `json:"early_checkout_reason"`
	RequestedAt         *string  `json:"requested_at"`
	IsEarlyCheckout     bool     `json:"is_early_checkout"`
	Status              *string  `json:"status"`
	AbsentReason        *string  `json:"absent_reason"`
	CreatedAt           string   `json:"created_at,omitempty"`
	UpdatedAt           string   `json:"updated_at,omitempty"`
}

// clockPtrToString safely converts a *ClockTime to a string.
func clockPtrToString(c *ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// NewAttendanceResponse converts a Record to AttendanceResponse
func NewAttendanceResponse(r Record) AttendanceResponse {
	var workedHours *float64
	if r.WorkedHours != nil {
		v := r.WorkedHours.InexactFloat64()
		workedHours = &v
	}

	var status *string
	if r.Status != nil {
		s := string(*r.Status)
		status = &s
	}

	return AttendanceResponse{
		ID:                  r.ID,
		EmployeeID:          r.EmployeeID,
		Date:                r.Date.Format(DateLayout),
		CheckInTime:         clockPtrToString(r.CheckIn),
		CheckOutTime:        clockPtrToString(r.CheckOut),
		WorkedHours:         workedHours,
		LateReason:          r.LateReason,
		EarlyCheckoutReason: r.EarlyCheckoutReason,
		RequestedAt:         clockPtrToString(r.RequestedAt),
		IsEarlyCheckout:     r.IsEarlyCheckout,
		Status:              status,
		AbsentReason:        r.AbsentReason,
		CreatedAt:           formatTimestamp(r.CreatedAt),
		UpdatedAt:           formatTimestamp(r.UpdatedAt),
	}
}

// TodayResponse is the live view of the current day.
type TodayResponse struct {
	Date           string              `json:"date"`
	IsWorkingDay   bool                `json:"is_working_day"`
	IsOpen         bool                `json:"is_open"`
	Classification Classification      `json:"classification"`
	Attendance     *AttendanceResponse `json:"attendance"`
}

type ReconcileResult struct {
	Date       string `json:"date"`
	Scanned    int    `json:"scanned"`
	Reconciled int    `json:"reconciled"`
	Failed     int    `json:"failed"`
}
