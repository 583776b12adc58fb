package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const attendanceColumns = `
	id, employee_id, date, check_in, check_out, worked_hours,
	late_reason, early_checkout_reason, requested_at, is_early_checkout,
	status, absent_reason, created_at, updated_at`

// openCondition is the "still open" predicate every closing write is gated by.
const openCondition = `check_in IS NOT NULL AND check_out IS NULL AND status IS NULL`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func toPgTime(c *attendance.ClockTime) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: int64(*c) * int64(time.Second/time.Microsecond), Valid: true}
}

func fromPgTime(t pgtype.Time) *attendance.ClockTime {
	if !t.Valid {
		return nil
	}
	c := attendance.ClockTime(t.Microseconds / int64(time.Second/time.Microsecond))
	return &c
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var (
		rec                            attendance.Record
		checkIn, checkOut, requestedAt pgtype.Time
		worked                         decimal.NullDecimal
		status                         *string
	)

	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date, &checkIn, &checkOut, &worked,
		&rec.LateReason, &rec.EarlyCheckoutReason, &requestedAt, &rec.IsEarlyCheckout,
		&status, &rec.AbsentReason, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	rec.Date = attendance.DateOf(rec.Date)
	rec.CheckIn = fromPgTime(checkIn)
	rec.CheckOut = fromPgTime(checkOut)
	rec.RequestedAt = fromPgTime(requestedAt)
	if worked.Valid {
		rec.WorkedHours = &worked.Decimal
	}
	if status != nil {
		s := attendance.DayStatus(*status)
		rec.Status = &s
	}
	return rec, nil
}

func collectAttendances(rows pgx.Rows) ([]attendance.Record, error) {
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return records, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2`

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, attendance.DateOf(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return &rec, nil
}

// CheckIn implements attendance.AttendanceRepository.
func (a *attendanceRepository) CheckIn(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	if err := record.Validate(); err != nil {
		return attendance.Record{}, err
	}
	if record.CheckIn == nil {
		return attendance.Record{}, fmt.Errorf("%w: check-in time is required", attendance.ErrInvalidRecord)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	q := GetQuerier(ctx, a.db)

	// The conflict branch only fires for a placeholder row without a check-in,
	// so two concurrent check-ins yield exactly one returned row.
	query := `
		INSERT INTO attendances (id, employee_id, date, check_in, late_reason)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET check_in = EXCLUDED.check_in,
			late_reason = EXCLUDED.late_reason,
			updated_at = NOW()
		WHERE attendances.check_in IS NULL
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		id.String(),
		record.EmployeeID,
		attendance.DateOf(record.Date),
		toPgTime(record.CheckIn),
		record.LateReason,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to insert check-in: %w", err)
	}
	return saved, nil
}

// CloseOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseOpen(ctx context.Context, employeeID string, date time.Time, update attendance.CheckoutUpdate) (attendance.Record, error) {
	if err := update.Validate(); err != nil {
		return attendance.Record{}, err
	}

	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_out = $3,
			worked_hours = $4,
			is_early_checkout = $5,
			early_checkout_reason = $6,
			requested_at = $7,
			updated_at = NOW()
		WHERE employee_id = $1 AND date = $2 AND ` + openCondition + `
		RETURNING ` + attendanceColumns

	checkOut := update.CheckOut
	saved, err := scanAttendance(q.QueryRow(ctx, query,
		employeeID,
		attendance.DateOf(date),
		toPgTime(&checkOut),
		update.WorkedHours,
		update.IsEarlyCheckout,
		update.EarlyCheckoutReason,
		toPgTime(update.RequestedAt),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrNoOpenCheckIn
		}
		return attendance.Record{}, fmt.Errorf("failed to update checkout: %w", err)
	}
	return saved, nil
}

// MarkAbsent implements attendance.AttendanceRepository.
func (a *attendanceRepository) MarkAbsent(ctx context.Context, employeeID string, date time.Time, reason string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_out = NULL,
			worked_hours = 0,
			is_early_checkout = FALSE,
			early_checkout_reason = NULL,
			requested_at = NULL,
			status = $3,
			absent_reason = $4,
			updated_at = NOW()
		WHERE employee_id = $1 AND date = $2 AND ` + openCondition + `
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		employeeID,
		attendance.DateOf(date),
		string(attendance.StatusAbsent),
		reason,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrNoOpenCheckIn
		}
		return attendance.Record{}, fmt.Errorf("failed to mark attendance absent: %w", err)
	}
	return saved, nil
}

// ListOpenThrough implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenThrough(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date <= $1 AND ` + openCondition + `
		ORDER BY employee_id, date`

	rows, err := q.Query(ctx, query, attendance.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendances: %w", err)
	}
	return collectAttendances(rows)
}

// ListByEmployeesInRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]attendance.Record, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = ANY($1) AND date BETWEEN $2 AND $3
		ORDER BY employee_id, date`

	rows, err := q.Query(ctx, query, employeeIDs, attendance.DateOf(from), attendance.DateOf(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances in range: %w", err)
	}
	return collectAttendances(rows)
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1
		ORDER BY date DESC`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance history: %w", err)
	}
	return collectAttendances(rows)
}
