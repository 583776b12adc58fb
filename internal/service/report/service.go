package report

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/shopspring/decimal"
)

type ReportServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	policy         attendance.ShiftPolicy
	calendar       *calendar.HolidayCalendar
	loc            *time.Location
	now            func() time.Time
}

func NewReportService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	policy attendance.ShiftPolicy,
	cal *calendar.HolidayCalendar,
	loc *time.Location,
) report.ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		policy:         policy,
		calendar:       cal,
		loc:            loc,
		now:            time.Now,
	}
}

// resolveEmployees returns the employees a report covers. Explicit ids win;
// a branch narrows them, or selects all active employees when no ids are given.
// Without a branch, ids the directory does not hold are still reported, named by id.
func (s *ReportServiceImpl) resolveEmployees(ctx context.Context, req report.AttendanceRangeReportRequest) ([]employee.Employee, error) {
	if len(req.EmployeeIDs) == 0 {
		employees, err := s.employeeRepo.ListActiveByBranch(ctx, req.Branch)
		if err != nil {
			return nil, fmt.Errorf("failed to list branch employees: %w", err)
		}
		return employees, nil
	}

	employees, err := s.employeeRepo.ListByIDs(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}
	if req.Branch == "" {
		return appendUnlisted(employees, req.EmployeeIDs), nil
	}

	filtered := employees[:0]
	for _, emp := range employees {
		if emp.Branch == req.Branch {
			filtered = append(filtered, emp)
		}
	}
	return filtered, nil
}

func appendUnlisted(employees []employee.Employee, ids []string) []employee.Employee {
	seen := make(map[string]struct{}, len(employees)+len(ids))
	for _, emp := range employees {
		seen[emp.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		employees = append(employees, employee.Employee{ID: id, FullName: id})
	}
	return employees
}

// GenerateAttendanceRangeReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateAttendanceRangeReport(ctx context.Context, req report.AttendanceRangeReportRequest) (report.AttendanceRangeReport, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return report.AttendanceRangeReport{}, err
	}

	from, err := attendance.ParseDate(req.StartDate)
	if err != nil {
		return report.AttendanceRangeReport{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	to, err := attendance.ParseDate(req.EndDate)
	if err != nil {
		return report.AttendanceRangeReport{}, fmt.Errorf("failed to parse end date: %w", err)
	}

	employees, err := s.resolveEmployees(ctx, req)
	if err != nil {
		return report.AttendanceRangeReport{}, err
	}
	if len(employees) == 0 {
		return report.AttendanceRangeReport{}, report.ErrNoEmployees
	}

	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}

	// Get data from repository
	records, err := s.attendanceRepo.ListByEmployeesInRange(ctx, ids, from, to)
	if err != nil {
		return report.AttendanceRangeReport{}, fmt.Errorf("failed to get attendance data: %w", err)
	}

	byEmployee := make(map[string][]attendance.Record, len(employees))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	result := report.AttendanceRangeReport{
		StartDate:   from.Format(attendance.DateLayout),
		EndDate:     to.Format(attendance.DateLayout),
		Branch:      req.Branch,
		GeneratedAt: s.now().In(s.loc).Format(time.RFC3339),
		Employees:   make([]report.EmployeeAttendance, 0, len(employees)),
	}

	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return report.AttendanceRangeReport{}, err
		}

		logs, summary := Aggregate(s.policy, s.calendar, from, to, byEmployee[emp.ID])
		result.WorkingDays = summary.WorkingDays
		result.Employees = append(result.Employees, report.EmployeeAttendance{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			Designation:  emp.Designation,
			Summary:      summary,
			DailyLogs:    logs,
		})
	}

	return result, nil
}

// Aggregate builds the classified day grid for one employee over the inclusive
// range [from, to]. Days without a record are filled with a placeholder and
// classified like any other day. records must belong to a single employee.
func Aggregate(policy attendance.ShiftPolicy, cal *calendar.HolidayCalendar, from, to time.Time, records []attendance.Record) ([]report.AttendanceDailyLog, report.AttendanceSummary) {
	byDate := make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		byDate[rec.Date.Format(attendance.DateLayout)] = rec
	}

	var (
		logs    []report.AttendanceDailyLog
		summary report.AttendanceSummary
		worked  = decimal.Zero
	)

	for day := attendance.DateOf(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(attendance.DateLayout)
		dc := attendance.DayContext{
			Date:      day,
			IsWeekend: calendar.IsWeekend(day),
			IsHoliday: cal.IsHoliday(day),
		}

		var rec *attendance.Record
		if r, ok := byDate[key]; ok {
			rec = &r
		}
		c := policy.Classify(dc, rec)

		log := report.AttendanceDailyLog{
			Date:       key,
			DayOfWeek:  day.Weekday().String(),
			IsWeekend:  dc.IsWeekend,
			IsHoliday:  dc.IsHoliday,
			Status:     c.Status,
			LateHours:  c.LateHours,
			EarlyHours: c.EarlyHours,
			Late:       attendance.FormatHMS(c.LateHours),
			Early:      attendance.FormatHMS(c.EarlyHours),
		}
		if rec != nil {
			log.HasRecord = true
			log.CheckIn = clockString(rec.CheckIn)
			log.CheckOut = clockString(rec.CheckOut)
			log.IsEarlyCheckout = rec.IsEarlyCheckout
			log.LateReason = rec.LateReason
			log.EarlyCheckoutReason = rec.EarlyCheckoutReason
			if rec.WorkedHours != nil {
				v := rec.WorkedHours.InexactFloat64()
				log.WorkedHours = &v
				worked = worked.Add(*rec.WorkedHours)
			}
		}
		logs = append(logs, log)

		if !dc.IsWeekend && !dc.IsHoliday {
			summary.WorkingDays++
		}
		switch c.Status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusHalfDay:
			summary.HalfDays++
		case attendance.StatusAbsent:
			summary.AbsentDays++
		}
		summary.TotalLateHours += c.LateHours
		summary.TotalEarlyHours += c.EarlyHours
	}

	summary.TotalWorkedHours = worked.InexactFloat64()
	summary.TotalLate = attendance.FormatHMS(summary.TotalLateHours)
	summary.TotalEarly = attendance.FormatHMS(summary.TotalEarlyHours)

	return logs, summary
}

// GetBranchToday implements report.ReportService.
func (s *ReportServiceImpl) GetBranchToday(ctx context.Context, branch string, now time.Time) (report.BranchTodaySummary, error) {
	employees, err := s.employeeRepo.ListActiveByBranch(ctx, branch)
	if err != nil {
		return report.BranchTodaySummary{}, fmt.Errorf("failed to list branch employees: %w", err)
	}
	if len(employees) == 0 {
		return report.BranchTodaySummary{}, employee.ErrBranchNotFound
	}

	date := attendance.DateOf(now.In(s.loc))
	ids := make([]string, 0, len(employees))
	for _, emp := range employees {
		ids = append(ids, emp.ID)
	}

	records, err := s.attendanceRepo.ListByEmployeesInRange(ctx, ids, date, date)
	if err != nil {
		return report.BranchTodaySummary{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	byEmployee := make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = rec
	}

	dc := attendance.DayContext{
		Date:      date,
		IsWeekend: calendar.IsWeekend(date),
		IsHoliday: s.calendar.IsHoliday(date),
	}

	summary := report.BranchTodaySummary{
		Branch:    branch,
		Date:      date.Format(attendance.DateLayout),
		Employees: make([]report.BranchEmployeeToday, 0, len(employees)),
	}
	for _, emp := range employees {
		row := report.BranchEmployeeToday{
			EmployeeID:  emp.ID,
			Name:        emp.FullName,
			Designation: emp.Designation,
			Phone:       emp.PhoneNumber,
		}

		var rec *attendance.Record
		if r, ok := byEmployee[emp.ID]; ok {
			rec = &r
			row.HasRecord = true
			row.IsOpen = r.IsOpen()
			row.CheckIn = clockString(r.CheckIn)
			row.CheckOut = clockString(r.CheckOut)
			if r.WorkedHours != nil {
				row.WorkedHours = r.WorkedHours.InexactFloat64()
			}
		}
		row.Status = s.policy.Classify(dc, rec).Status

		summary.Employees = append(summary.Employees, row)
	}

	return summary, nil
}

func clockString(c *attendance.ClockTime) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}
