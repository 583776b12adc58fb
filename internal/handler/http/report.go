package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/spreadsheet"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Branch summary of the current day
	GetBranchToday(w http.ResponseWriter, r *http.Request)

	// Range attendance report
	GetAttendanceReport(w http.ResponseWriter, r *http.Request)

	// Range attendance report as a spreadsheet download
	ExportAttendanceReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	now           func() time.Time
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		now:           time.Now,
	}
}

// parseRangeRequest reads the report filters from the query string, or from a
// JSON body on POST.
func parseRangeRequest(r *http.Request) (report.AttendanceRangeReportRequest, error) {
	var req report.AttendanceRangeReportRequest

	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	q := r.URL.Query()
	req.StartDate = q.Get("start_date")
	req.EndDate = q.Get("end_date")
	req.Branch = strings.TrimSpace(q.Get("branch"))
	for _, id := range strings.Split(q.Get("employee_ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			req.EmployeeIDs = append(req.EmployeeIDs, id)
		}
	}
	return req, nil
}

// GetBranchToday handles GET /admin/branches/{branch}/today
func (h *reportHandlerImpl) GetBranchToday(w http.ResponseWriter, r *http.Request) {
	branch := chi.URLParam(r, "branch")

	result, err := h.reportService.GetBranchToday(r.Context(), branch, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAttendanceReport handles GET /admin/reports/attendance or POST with a body
func (h *reportHandlerImpl) GetAttendanceReport(w http.ResponseWriter, r *http.Request) {
	req, err := parseRangeRequest(r)
	if err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	result, err := h.reportService.GenerateAttendanceRangeReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportAttendanceReport handles GET /admin/reports/attendance/export
func (h *reportHandlerImpl) ExportAttendanceReport(w http.ResponseWriter, r *http.Request) {
	req, err := parseRangeRequest(r)
	if err != nil {
		response.BadRequest(w, "invalid request body", nil)
		return
	}

	result, err := h.reportService.GenerateAttendanceRangeReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", spreadsheet.FileName(result)))
	if err := spreadsheet.WriteAttendanceReport(w, result); err != nil {
		// Headers are already sent.
		slog.Error("Failed to write attendance export", "error", err)
	}
}
