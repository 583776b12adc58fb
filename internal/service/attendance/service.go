package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/calendar"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	policy   attendance.ShiftPolicy
	calendar *calendar.HolidayCalendar
	loc      *time.Location
}

// localNow converts the caller's instant to the attendance timezone and returns
// the record date and the time of day.
func (a *AttendanceServiceImpl) localNow(now time.Time) (time.Time, attendance.ClockTime) {
	local := now.In(a.loc)
	return attendance.DateOf(local), attendance.ClockOf(local)
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date, clock := a.localNow(req.Now)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if existing != nil && existing.CheckIn != nil {
		return attendance.AttendanceResponse{}, &attendance.PolicyError{
			Err:    attendance.ErrAlreadyCheckedIn,
			Detail: fmt.Sprintf("checked in at %s", existing.CheckIn),
		}
	}

	if err := a.policy.ValidateCheckIn(clock, req.LateReason); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record := attendance.Record{
		EmployeeID: req.EmployeeID,
		Date:       date,
		CheckIn:    &clock,
	}
	if reason := strings.TrimSpace(req.LateReason); reason != "" {
		record.LateReason = &reason
	}

	// A started write completes even if the client goes away.
	saved, err := a.AttendanceRepository.CheckIn(context.WithoutCancel(ctx), record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, &attendance.PolicyError{Err: err}
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to save check-in: %w", err)
	}

	slog.Info("employee checked in",
		"employee_id", saved.EmployeeID,
		"date", saved.Date.Format(attendance.DateLayout),
		"check_in", saved.CheckIn.String(),
		"late", record.LateReason != nil,
	)

	return attendance.NewAttendanceResponse(saved), nil
}

// openRecord loads today's record and fails with ErrNoOpenCheckIn unless it is open.
func (a *AttendanceServiceImpl) openRecord(ctx context.Context, employeeID string, date time.Time) (attendance.Record, error) {
	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if existing == nil || !existing.IsOpen() {
		detail := "please check in first"
		switch {
		case existing == nil:
		case existing.IsReconciled():
			detail = "the day was closed as absent after a missed checkout"
		case existing.CheckOut != nil:
			detail = "already checked out at " + existing.CheckOut.String()
		}
		return attendance.Record{}, &attendance.PolicyError{
			Err:    attendance.ErrNoOpenCheckIn,
			Detail: detail,
		}
	}
	return *existing, nil
}

func (a *AttendanceServiceImpl) closeOpen(ctx context.Context, employeeID string, date time.Time, update attendance.CheckoutUpdate) (attendance.Record, error) {
	saved, err := a.AttendanceRepository.CloseOpen(context.WithoutCancel(ctx), employeeID, date, update)
	if err != nil {
		// Closed by another request or by reconciliation in between.
		if errors.Is(err, attendance.ErrNoOpenCheckIn) {
			return attendance.Record{}, &attendance.PolicyError{Err: err}
		}
		return attendance.Record{}, fmt.Errorf("failed to save checkout: %w", err)
	}
	return saved, nil
}

// NormalCheckout implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) NormalCheckout(ctx context.Context, req attendance.CheckoutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date, clock := a.localNow(req.Now)

	open, err := a.openRecord(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := a.policy.ValidateCheckout(*open.CheckIn, clock); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	saved, err := a.closeOpen(ctx, req.EmployeeID, date, attendance.CheckoutUpdate{
		CheckOut:    clock,
		WorkedHours: attendance.WorkedHours(*open.CheckIn, clock),
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("employee checked out",
		"employee_id", saved.EmployeeID,
		"date", saved.Date.Format(attendance.DateLayout),
		"check_out", clock.String(),
		"worked_hours", saved.WorkedHours.String(),
	)

	return attendance.NewAttendanceResponse(saved), nil
}

// RequestEarlyCheckout implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RequestEarlyCheckout(ctx context.Context, req attendance.EarlyCheckoutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	date, clock := a.localNow(req.Now)

	open, err := a.openRecord(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := a.policy.ValidateEarlyCheckout(req.Reason); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	requestedAt := clock
	saved, err := a.closeOpen(ctx, req.EmployeeID, date, attendance.CheckoutUpdate{
		CheckOut:            clock,
		WorkedHours:         attendance.WorkedHours(*open.CheckIn, clock),
		IsEarlyCheckout:     true,
		EarlyCheckoutReason: &reason,
		RequestedAt:         &requestedAt,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("employee checked out early",
		"employee_id", saved.EmployeeID,
		"date", saved.Date.Format(attendance.DateLayout),
		"check_out", clock.String(),
		"worked_hours", saved.WorkedHours.String(),
	)

	return attendance.NewAttendanceResponse(saved), nil
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string, now time.Time) (attendance.TodayResponse, error) {
	date, _ := a.localNow(now)

	rec, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	day := attendance.DayContext{
		Date:      date,
		IsWeekend: calendar.IsWeekend(date),
		IsHoliday: a.calendar.IsHoliday(date),
	}

	resp := attendance.TodayResponse{
		Date:           date.Format(attendance.DateLayout),
		IsWorkingDay:   a.calendar.IsWorkingDay(date),
		Classification: a.policy.Classify(day, rec),
	}
	if rec != nil {
		r := attendance.NewAttendanceResponse(*rec)
		resp.Attendance = &r
		resp.IsOpen = rec.IsOpen()
	}
	return resp, nil
}

// GetHistory implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetHistory(ctx context.Context, employeeID string) ([]attendance.AttendanceResponse, error) {
	records, err := a.AttendanceRepository.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.NewAttendanceResponse(r))
	}
	return responses, nil
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	policy attendance.ShiftPolicy,
	cal *calendar.HolidayCalendar,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		policy:               policy,
		calendar:             cal,
		loc:                  loc,
	}
}
