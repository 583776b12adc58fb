package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-attendance/internal/service/attendance"
	reportService "github.com/cmlabs-hris/hris-attendance/internal/service/report"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type testServer struct {
	router      *chi.Mux
	jwt         jwt.Service
	clock       time.Time
	attendances *memory.AttendanceRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cal, err := calendar.New(map[int][]string{2026: {"2026-03-19"}})
	require.NoError(t, err)

	attendanceRepo := memory.NewAttendanceRepository()
	employeeRepo := memory.NewEmployeeRepository(
		employee.Employee{ID: "emp-1", FullName: "Alice", Branch: "Jakarta"},
		employee.Employee{ID: "emp-2", FullName: "Bob", Branch: "Jakarta"},
	)

	ts := &testServer{
		jwt:         jwt.NewJWTService(handlerTestSecret, "1h"),
		clock:       time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC),
		attendances: attendanceRepo,
	}
	now := func() time.Time { return ts.clock }

	attSvc := attendanceService.NewAttendanceService(attendanceRepo, attendance.DefaultShiftPolicy, cal, time.UTC)
	reconSvc := attendanceService.NewReconciliationService(attendanceRepo, time.UTC)
	repSvc := reportService.NewReportService(attendanceRepo, employeeRepo, attendance.DefaultShiftPolicy, cal, time.UTC)

	attHandler := NewAttendanceHandler(attSvc, reconSvc, repSvc, time.UTC)
	attHandler.(*attendanceHandlerImpl).now = now
	repHandler := NewReportHandler(repSvc)
	repHandler.(*reportHandlerImpl).now = now

	ts.router = NewRouter(ts.jwt, attHandler, repHandler, RouterOptions{Env: "test"})
	return ts
}

func (ts *testServer) token(t *testing.T, employeeID string, role jwt.Role) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken(employeeID, role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAttendanceRoutes_DayFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "emp-1", jwt.RoleEmployee)

	// 09:30 without a reason
	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MISSING_REASON", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]string{"late_reason": "traffic"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var checkedIn attendance.AttendanceResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &checkedIn))
	assert.Equal(t, "09:30:00", *checkedIn.CheckInTime)
	assert.Equal(t, "traffic", *checkedIn.LateReason)

	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]string{"late_reason": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_CHECKED_IN", decodeEnvelope(t, rec).Error.Code)

	// 3h40m worked in the half-day window
	ts.clock = time.Date(2026, time.March, 10, 13, 10, 0, 0, time.UTC)
	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "INSUFFICIENT_HOURS", env.Error.Code)
	assert.Equal(t, "0h 20m", env.Error.Details["remaining"])
	assert.Equal(t, "20", env.Error.Details["remaining_minutes"])

	ts.clock = time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC)
	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "OUTSIDE_WINDOW", decodeEnvelope(t, rec).Error.Code)

	ts.clock = time.Date(2026, time.March, 10, 18, 45, 0, 0, time.UTC)
	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var checkedOut attendance.AttendanceResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &checkedOut))
	assert.Equal(t, 9.25, *checkedOut.WorkedHours)
	assert.False(t, checkedOut.IsEarlyCheckout)

	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NO_OPEN_CHECK_IN", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/attendance/today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var today attendance.TodayResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &today))
	assert.Equal(t, "2026-03-10", today.Date)
	assert.True(t, today.IsWorkingDay)
	assert.False(t, today.IsOpen)
	assert.Equal(t, attendance.StatusPresent, today.Classification.Status)
	assert.InDelta(t, 0.25, today.Classification.LateHours, 1e-9)

	rec = ts.do(t, http.MethodGet, "/api/v1/attendance/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []attendance.AttendanceResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &history))
	assert.Len(t, history, 1)
}

func TestAttendanceRoutes_EarlyCheckout(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "emp-1", jwt.RoleEmployee)

	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/early-checkout", token, map[string]string{"reason": "sick"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NO_OPEN_CHECK_IN", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]string{"late_reason": "traffic"})
	require.Equal(t, http.StatusCreated, rec.Code)

	ts.clock = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/early-checkout", token, map[string]string{"reason": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "MISSING_REASON", decodeEnvelope(t, rec).Error.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/early-checkout", token, map[string]string{"reason": "doctor appointment"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp attendance.AttendanceResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
	assert.True(t, resp.IsEarlyCheckout)
	assert.Equal(t, 2.5, *resp.WorkedHours)
	assert.Equal(t, "12:00:00", *resp.RequestedAt)
}

func TestAttendanceRoutes_Auth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/today", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/attendance/today", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	employeeToken := ts.token(t, "emp-1", jwt.RoleEmployee)
	rec = ts.do(t, http.MethodGet, "/api/v1/admin/branches/Jakarta/today", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin token without an employee cannot check in.
	adminToken := ts.token(t, "", jwt.RoleAdmin)
	rec = ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	employeeToken := ts.token(t, "emp-1", jwt.RoleEmployee)
	adminToken := ts.token(t, "admin-1", jwt.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeToken, map[string]string{"late_reason": "traffic"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/branches/Jakarta/today", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var branch struct {
		Date      string `json:"date"`
		Employees []struct {
			EmployeeID string `json:"employee_id"`
			HasRecord  bool   `json:"has_record"`
			IsOpen     bool   `json:"is_open"`
		} `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &branch))
	require.Len(t, branch.Employees, 2)
	assert.Equal(t, "emp-1", branch.Employees[0].EmployeeID)
	assert.True(t, branch.Employees[0].IsOpen)
	assert.False(t, branch.Employees[1].HasRecord)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/branches/Nowhere/today", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/attendance/reconcile?date=2026-03-10", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result attendance.ReconcileResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &result))
	assert.Equal(t, 1, result.Reconciled)

	rec = ts.do(t, http.MethodPost, "/api/v1/admin/attendance/reconcile?date=10-03-2026", adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/reports/attendance?start_date=2026-03-09&end_date=2026-03-15&branch=Jakarta", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/reports/attendance?start_date=2026-03-15&end_date=2026-03-09&branch=Jakarta", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/reports/attendance?start_date=2026-03-09&end_date=2026-03-15", adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/admin/reports/attendance/export?start_date=2026-03-09&end_date=2026-03-15&employee_ids=emp-1,emp-2", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, spreadsheet.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_2026-03-09_to_2026-03-15.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestMyReportRoute(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "emp-1", jwt.RoleEmployee)

	rec := ts.do(t, http.MethodGet, "/api/v1/attendance/report?start_date=2026-03-16&end_date=2026-03-22", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep struct {
		WorkingDays int `json:"working_days"`
		Employees   []struct {
			EmployeeID string `json:"employee_id"`
			DailyLogs  []struct {
				Status string `json:"status"`
			} `json:"daily_logs"`
		} `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &rep))

	// 2026-03-19 is a holiday in the test calendar.
	assert.Equal(t, 4, rep.WorkingDays)
	require.Len(t, rep.Employees, 1)
	assert.Equal(t, "emp-1", rep.Employees[0].EmployeeID)
	require.Len(t, rep.Employees[0].DailyLogs, 7)
	assert.Equal(t, "Holiday", rep.Employees[0].DailyLogs[3].Status)
	assert.Equal(t, "WeekendOff", rep.Employees[0].DailyLogs[5].Status)
}


func TestMyReportRoute_EmployeeOutsideDirectory(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, "emp-7", jwt.RoleEmployee)

	rec := ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]string{"late_reason": "traffic"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/attendance/report?start_date=2026-03-10&end_date=2026-03-10", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep struct {
		Employees []struct {
			EmployeeID string `json:"employee_id"`
			DailyLogs  []struct {
				HasRecord bool `json:"has_record"`
			} `json:"daily_logs"`
		} `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &rep))
	require.Len(t, rep.Employees, 1)
	assert.Equal(t, "emp-7", rep.Employees[0].EmployeeID)
	require.Len(t, rep.Employees[0].DailyLogs, 1)
	assert.True(t, rep.Employees[0].DailyLogs[0].HasRecord)
}
