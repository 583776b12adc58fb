package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/google/uuid"
)

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

type attendanceKey struct {
	employeeID string
	date       string
}

func keyOf(employeeID string, date time.Time) attendanceKey {
	return attendanceKey{employeeID: employeeID, date: attendance.DateOf(date).Format(attendance.DateLayout)}
}

// AttendanceRepository keeps records in a map. Each write is a compare-and-set
// under one mutex, the same conditions the SQL store puts in its WHERE clauses.
type AttendanceRepository struct {
	mu      sync.Mutex
	records map[attendanceKey]attendance.Record
	now     func() time.Time
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		records: make(map[attendanceKey]attendance.Record),
		now:     time.Now,
	}
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *AttendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// CheckIn implements attendance.AttendanceRepository.
func (r *AttendanceRepository) CheckIn(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Record{}, err
	}
	if err := record.Validate(); err != nil {
		return attendance.Record{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyOf(record.EmployeeID, record.Date)
	now := r.now()

	existing, ok := r.records[key]
	if ok {
		if existing.CheckIn != nil {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		existing.CheckIn = record.CheckIn
		existing.LateReason = record.LateReason
		existing.UpdatedAt = now
		r.records[key] = existing
		return existing, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, err
	}
	record.ID = id.String()
	record.Date = attendance.DateOf(record.Date)
	record.CreatedAt = now
	record.UpdatedAt = now
	r.records[key] = record
	return record, nil
}

// CloseOpen implements attendance.AttendanceRepository.
func (r *AttendanceRepository) CloseOpen(ctx context.Context, employeeID string, date time.Time, update attendance.CheckoutUpdate) (attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Record{}, err
	}
	if err := update.Validate(); err != nil {
		return attendance.Record{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyOf(employeeID, date)
	existing, ok := r.records[key]
	if !ok || !existing.IsOpen() {
		return attendance.Record{}, attendance.ErrNoOpenCheckIn
	}

	closed := update.Apply(existing)
	if err := closed.Validate(); err != nil {
		return attendance.Record{}, err
	}
	closed.UpdatedAt = r.now()
	r.records[key] = closed
	return closed, nil
}

// MarkAbsent implements attendance.AttendanceRepository.
func (r *AttendanceRepository) MarkAbsent(ctx context.Context, employeeID string, date time.Time, reason string) (attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return attendance.Record{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyOf(employeeID, date)
	existing, ok := r.records[key]
	if !ok || !existing.IsOpen() {
		return attendance.Record{}, attendance.ErrNoOpenCheckIn
	}

	marked := attendance.MarkAbsent(existing, reason)
	marked.UpdatedAt = r.now()
	r.records[key] = marked
	return marked, nil
}

// ListOpenThrough implements attendance.AttendanceRepository.
func (r *AttendanceRepository) ListOpenThrough(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	date = attendance.DateOf(date)
	return r.filter(ctx, func(rec attendance.Record) bool {
		return !rec.Date.After(date) && rec.IsOpen()
	}, byEmployeeThenDate)
}

// ListByEmployeesInRange implements attendance.AttendanceRepository.
func (r *AttendanceRepository) ListByEmployeesInRange(ctx context.Context, employeeIDs []string, from, to time.Time) ([]attendance.Record, error) {
	ids := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		ids[id] = struct{}{}
	}
	from, to = attendance.DateOf(from), attendance.DateOf(to)

	return r.filter(ctx, func(rec attendance.Record) bool {
		_, ok := ids[rec.EmployeeID]
		return ok && !rec.Date.Before(from) && !rec.Date.After(to)
	}, byEmployeeThenDate)
}

// ListByEmployee implements attendance.AttendanceRepository.
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]attendance.Record, error) {
	return r.filter(ctx, func(rec attendance.Record) bool {
		return rec.EmployeeID == employeeID
	}, func(a, b attendance.Record) bool {
		return a.Date.After(b.Date)
	})
}

func (r *AttendanceRepository) filter(ctx context.Context, keep func(attendance.Record) bool, less func(a, b attendance.Record) bool) ([]attendance.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	var out []attendance.Record
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

func byEmployeeThenDate(a, b attendance.Record) bool {
	if a.EmployeeID != b.EmployeeID {
		return a.EmployeeID < b.EmployeeID
	}
	return a.Date.Before(b.Date)
}
