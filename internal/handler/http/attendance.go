package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	EarlyCheckout(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	GetMyReport(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService     attendance.AttendanceService
	reconciliationService attendance.ReconciliationService
	reportService         report.ReportService
	loc                   *time.Location
	now                   func() time.Time
}

func NewAttendanceHandler(
	attendanceService attendance.AttendanceService,
	reconciliationService attendance.ReconciliationService,
	reportService report.ReportService,
	loc *time.Location,
) AttendanceHandler {
	if loc == nil {
		loc = time.Local
	}
	return &attendanceHandlerImpl{
		attendanceService:     attendanceService,
		reconciliationService: reconciliationService,
		reportService:         reportService,
		loc:                   loc,
		now:                   time.Now,
	}
}

// decodeOptionalJSON decodes a JSON body into v. An empty body is accepted.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// CheckIn handles POST /attendance/check-in
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.CheckInRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("Failed to decode check-in request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = employeeID
	req.Now = h.now().In(h.loc)

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut handles POST /attendance/check-out
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := attendance.CheckoutRequest{
		EmployeeID: employeeID,
		Now:        h.now().In(h.loc),
	}

	result, err := h.attendanceService.NormalCheckout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", result)
}

// EarlyCheckout handles POST /attendance/early-checkout
func (h *attendanceHandlerImpl) EarlyCheckout(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.EarlyCheckoutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		slog.Error("Failed to decode early checkout request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = employeeID
	req.Now = h.now().In(h.loc)

	result, err := h.attendanceService.RequestEarlyCheckout(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Early checkout recorded", result)
}

// GetToday handles GET /attendance/today
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), employeeID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetHistory handles GET /attendance/history
func (h *attendanceHandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetHistory(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result))})
}

// GetMyReport handles GET /attendance/report?start_date=&end_date=
func (h *attendanceHandlerImpl) GetMyReport(w http.ResponseWriter, r *http.Request) {
	employeeID, err := jwt.EmployeeIDFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	req := report.AttendanceRangeReportRequest{
		EmployeeIDs: []string{employeeID},
		StartDate:   r.URL.Query().Get("start_date"),
		EndDate:     r.URL.Query().Get("end_date"),
	}

	result, err := h.reportService.GenerateAttendanceRangeReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Reconcile handles POST /admin/attendance/reconcile?date=
func (h *attendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.loc)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		if _, ok := validator.IsValidDate(dateStr); !ok {
			response.ValidationError(w, map[string]string{"date": "date must match the format 2006-01-02"})
			return
		}
		parsed, _ := time.ParseInLocation(attendance.DateLayout, dateStr, h.loc)
		day = parsed
	}

	result, err := h.reconciliationService.Reconcile(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reconciliation finished", result)
}
