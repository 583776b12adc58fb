package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday
func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (attendance.AttendanceService, *memory.AttendanceRepository) {
	t.Helper()
	cal, err := calendar.New(map[int][]string{2026: {"2026-03-19"}})
	require.NoError(t, err)

	repo := memory.NewAttendanceRepository()
	return NewAttendanceService(repo, attendance.DefaultShiftPolicy, cal, time.UTC), repo
}

func checkIn(t *testing.T, svc attendance.AttendanceService, employeeID string, now time.Time, reason string) attendance.AttendanceResponse {
	t.Helper()
	resp, err := svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: employeeID,
		LateReason: reason,
		Now:        now,
	})
	require.NoError(t, err)
	return resp
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("too early", func(t *testing.T) {
		svc, repo := newTestService(t)
		_, err := svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: "emp-1", Now: at(9, 10)})
		assert.ErrorIs(t, err, attendance.ErrTooEarly)

		rec, err := repo.GetByEmployeeAndDate(ctx, "emp-1", attendance.DateOf(at(0, 0)))
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("at the grace boundary without a reason", func(t *testing.T) {
		svc, _ := newTestService(t)
		resp := checkIn(t, svc, "emp-1", time.Date(2026, time.March, 10, 9, 15, 0, 0, time.UTC), "")
		assert.Equal(t, "09:15:00", *resp.CheckInTime)
		assert.Nil(t, resp.LateReason)
	})

	t.Run("late without a reason", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: "emp-1", LateReason: "  ", Now: at(9, 30)})
		assert.ErrorIs(t, err, attendance.ErrMissingReason)
	})

	t.Run("late with a reason", func(t *testing.T) {
		svc, _ := newTestService(t)
		resp := checkIn(t, svc, "emp-1", at(9, 30), " traffic ")
		assert.Equal(t, "2026-03-10", resp.Date)
		assert.Equal(t, "09:30:00", *resp.CheckInTime)
		assert.Equal(t, "traffic", *resp.LateReason)
		assert.Nil(t, resp.CheckOutTime)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("twice on the same day", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(9, 30), "traffic")

		_, err := svc.CheckIn(ctx, attendance.CheckInRequest{EmployeeID: "emp-1", LateReason: "again", Now: at(10, 0)})
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

		var pe *attendance.PolicyError
		require.True(t, errors.As(err, &pe))
		assert.Contains(t, pe.Detail, "09:30:00")
	})

	t.Run("missing employee", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.CheckIn(ctx, attendance.CheckInRequest{Now: at(9, 15)})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, attendance.ErrTooEarly)
	})

	t.Run("converts to the attendance timezone", func(t *testing.T) {
		jakarta := time.FixedZone("WIB", 7*3600)
		cal, err := calendar.New(nil)
		require.NoError(t, err)
		svc := NewAttendanceService(memory.NewAttendanceRepository(), attendance.DefaultShiftPolicy, cal, jakarta)

		// 02:20 UTC is 09:20 in Jakarta.
		resp := checkIn(t, svc, "emp-1", time.Date(2026, time.March, 10, 2, 20, 0, 0, time.UTC), "train delay")
		assert.Equal(t, "2026-03-10", resp.Date)
		assert.Equal(t, "09:20:00", *resp.CheckInTime)
	})
}

func TestNormalCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("without check-in", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: at(18, 45)})
		assert.ErrorIs(t, err, attendance.ErrNoOpenCheckIn)
	})

	t.Run("full day window", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(9, 30), "traffic")

		resp, err := svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: at(18, 45)})
		require.NoError(t, err)
		assert.Equal(t, "18:45:00", *resp.CheckOutTime)
		assert.Equal(t, 9.25, *resp.WorkedHours)
		assert.False(t, resp.IsEarlyCheckout)

		today, err := svc.GetToday(ctx, "emp-1", at(20, 0))
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusPresent, today.Classification.Status)
		assert.False(t, today.IsOpen)

		_, err = svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: at(18, 50)})
		var pe *attendance.PolicyError
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, attendance.ErrNoOpenCheckIn)
		assert.Equal(t, "already checked out at 18:45:00", pe.Detail)
	})

	t.Run("windows are half-open", func(t *testing.T) {
		cases := []struct {
			name    string
			now     time.Time
			wantErr error
		}{
			{"before half day", at(12, 59), attendance.ErrOutsideWindow},
			{"half day start", at(13, 0), nil},
			{"half day end", at(14, 0), attendance.ErrOutsideWindow},
			{"between windows", at(16, 0), attendance.ErrOutsideWindow},
			{"full day start", at(18, 30), nil},
			{"full day end", at(19, 0), attendance.ErrOutsideWindow},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				svc, _ := newTestService(t)
				checkIn(t, svc, "emp-1", at(9, 0).Add(15*time.Minute), "")

				_, err := svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: tc.now})
				if tc.wantErr == nil {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, tc.wantErr)
				}
			})
		}
	})

	t.Run("half day with insufficient hours", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(10, 0), "bus")

		_, err := svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: at(13, 30)})
		require.ErrorIs(t, err, attendance.ErrInsufficientHours)

		var pe *attendance.PolicyError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, 30*time.Minute, pe.Remaining)
		assert.Contains(t, pe.Detail, "0h 30m")

		today, err := svc.GetToday(ctx, "emp-1", at(13, 31))
		require.NoError(t, err)
		assert.True(t, today.IsOpen)
	})

	t.Run("twice", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(9, 15), "")

		_, err := svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: at(18, 30)})
		require.NoError(t, err)
		_, err = svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: at(18, 40)})
		assert.ErrorIs(t, err, attendance.ErrNoOpenCheckIn)
	})
}

func TestRequestEarlyCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("without check-in", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.RequestEarlyCheckout(ctx, attendance.EarlyCheckoutRequest{EmployeeID: "emp-1", Reason: "sick", Now: at(12, 0)})
		assert.ErrorIs(t, err, attendance.ErrNoOpenCheckIn)
	})

	t.Run("blank reason", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(9, 30), "traffic")

		_, err := svc.RequestEarlyCheckout(ctx, attendance.EarlyCheckoutRequest{EmployeeID: "emp-1", Reason: "\t ", Now: at(12, 0)})
		assert.ErrorIs(t, err, attendance.ErrMissingReason)
	})

	t.Run("records the request", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(9, 30), "traffic")

		resp, err := svc.RequestEarlyCheckout(ctx, attendance.EarlyCheckoutRequest{EmployeeID: "emp-1", Reason: "doctor", Now: at(12, 0)})
		require.NoError(t, err)
		assert.True(t, resp.IsEarlyCheckout)
		assert.Equal(t, "12:00:00", *resp.CheckOutTime)
		assert.Equal(t, "12:00:00", *resp.RequestedAt)
		assert.Equal(t, "doctor", *resp.EarlyCheckoutReason)
		assert.Equal(t, 2.5, *resp.WorkedHours)

		// 6.5 hours early is beyond the tolerance.
		today, err := svc.GetToday(ctx, "emp-1", at(12, 1))
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusHalfDay, today.Classification.Status)
		assert.InDelta(t, 6.5, today.Classification.EarlyHours, 1e-9)
	})

	t.Run("after a normal checkout", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(9, 15), "")
		_, err := svc.NormalCheckout(ctx, attendance.CheckoutRequest{EmployeeID: "emp-1", Now: at(18, 30)})
		require.NoError(t, err)

		_, err = svc.RequestEarlyCheckout(ctx, attendance.EarlyCheckoutRequest{EmployeeID: "emp-1", Reason: "late edit", Now: at(18, 35)})
		assert.ErrorIs(t, err, attendance.ErrNoOpenCheckIn)
	})
}

func TestGetToday(t *testing.T) {
	ctx := context.Background()

	t.Run("no record on a working day", func(t *testing.T) {
		svc, _ := newTestService(t)
		today, err := svc.GetToday(ctx, "emp-1", at(8, 0))
		require.NoError(t, err)
		assert.True(t, today.IsWorkingDay)
		assert.Nil(t, today.Attendance)
		assert.Equal(t, attendance.StatusAbsent, today.Classification.Status)
	})

	t.Run("open record", func(t *testing.T) {
		svc, _ := newTestService(t)
		checkIn(t, svc, "emp-1", at(9, 15), "")

		today, err := svc.GetToday(ctx, "emp-1", at(11, 0))
		require.NoError(t, err)
		assert.True(t, today.IsOpen)
		require.NotNil(t, today.Attendance)
		assert.Equal(t, attendance.StatusAbsent, today.Classification.Status)
	})

	t.Run("holiday", func(t *testing.T) {
		svc, _ := newTestService(t)
		today, err := svc.GetToday(ctx, "emp-1", time.Date(2026, time.March, 19, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.False(t, today.IsWorkingDay)
		assert.Equal(t, attendance.StatusHoliday, today.Classification.Status)
	})

	t.Run("weekend", func(t *testing.T) {
		svc, _ := newTestService(t)
		today, err := svc.GetToday(ctx, "emp-1", time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.False(t, today.IsWorkingDay)
		assert.Equal(t, attendance.StatusWeekendOff, today.Classification.Status)
	})
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	checkIn(t, svc, "emp-1", at(9, 15), "")
	checkIn(t, svc, "emp-1", at(9, 15).AddDate(0, 0, 1), "")
	checkIn(t, svc, "emp-2", at(9, 15), "")

	history, err := svc.GetHistory(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2026-03-11", history[0].Date)
	assert.Equal(t, "2026-03-10", history[1].Date)

	empty, err := svc.GetHistory(ctx, "emp-3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

