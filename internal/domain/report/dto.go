package report

import (
	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

// MaxRangeDays bounds a single report request.
const MaxRangeDays = 366

// ========================================
// ATTENDANCE RANGE REPORT
// ========================================

type AttendanceRangeReportRequest struct {
	EmployeeIDs []string `json:"employee_ids" validate:"omitempty,dive,notblank"`
	Branch      string   `json:"branch"`
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (r *AttendanceRangeReportRequest) Validate() error {
	var errs validator.ValidationErrors
	if err := validator.Struct(r); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, fieldErrs...)
	}

	if len(r.EmployeeIDs) == 0 && validator.IsEmpty(r.Branch) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_ids",
			Message: "employee_ids or branch is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	if int(end.Sub(start).Hours()/24)+1 > MaxRangeDays {
		return ErrRangeTooLong
	}

	return nil
}

type AttendanceRangeReport struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Branch      string `json:"branch,omitempty"`
	GeneratedAt string `json:"generated_at"`
	WorkingDays int    `json:"working_days"`

	Employees []EmployeeAttendance `json:"employees"`
}

type EmployeeAttendance struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Designation  *string `json:"designation,omitempty"`

	Summary   AttendanceSummary    `json:"summary"`
	DailyLogs []AttendanceDailyLog `json:"daily_logs"`
}

type AttendanceSummary struct {
	WorkingDays      int     `json:"working_days"`
	PresentDays      int     `json:"present_days"`
	HalfDays         int     `json:"half_days"`
	AbsentDays       int     `json:"absent_days"`
	TotalWorkedHours float64 `json:"total_worked_hours"`
	TotalLateHours   float64 `json:"total_late_hours"`
	TotalEarlyHours  float64 `json:"total_early_hours"`
	TotalLate        string  `json:"total_late"`
	TotalEarly       string  `json:"total_early"`
}

type AttendanceDailyLog struct {
	Date                string               `json:"date"`
	DayOfWeek           string               `json:"day_of_week"`
	IsWeekend           bool                 `json:"is_weekend"`
	IsHoliday           bool                 `json:"is_holiday"`
	HasRecord           bool                 `json:"has_record"`
	CheckIn             *string              `json:"check_in"`
	CheckOut            *string              `json:"check_out"`
	WorkedHours         *float64             `json:"worked_hours"`
	IsEarlyCheckout     bool                 `json:"is_early_checkout"`
	LateReason          *string              `json:"late_reason,omitempty"`
	EarlyCheckoutReason *string              `json:"early_checkout_reason,omitempty"`
	Status              attendance.DayStatus `json:"status"`
	LateHours           float64              `json:"late_hours"`
	EarlyHours          float64              `json:"early_hours"`
	Late                string               `json:"late"`
	Early               string               `json:"early"`
}

// ========================================
// BRANCH TODAY SUMMARY
// ========================================

type BranchTodaySummary struct {
	Branch    string                `json:"branch"`
	Date      string                `json:"date"`
	Employees []BranchEmployeeToday `json:"employees"`
}

type BranchEmployeeToday struct {
	EmployeeID  string               `json:"employee_id"`
	Name        string               `json:"name"`
	Designation *string              `json:"designation"`
	Phone       *string              `json:"phone"`
	HasRecord   bool                 `json:"has_record"`
	IsOpen      bool                 `json:"is_open"`
	Status      attendance.DayStatus `json:"status"`
	CheckIn     *string              `json:"check_in"`
	CheckOut    *string              `json:"check_out"`
	WorkedHours float64              `json:"worked_hours"`
}
