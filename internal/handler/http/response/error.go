package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/validator"
)

// policyCodes maps each policy rejection to its status and error code.
var policyCodes = []struct {
	err    error
	status int
	code   string
}{
	{attendance.ErrAlreadyCheckedIn, http.StatusConflict, "ALREADY_CHECKED_IN"},
	{attendance.ErrNoOpenCheckIn, http.StatusConflict, "NO_OPEN_CHECK_IN"},
	{attendance.ErrTooEarly, http.StatusUnprocessableEntity, "TOO_EARLY"},
	{attendance.ErrOutsideWindow, http.StatusUnprocessableEntity, "OUTSIDE_WINDOW"},
	{attendance.ErrInsufficientHours, http.StatusUnprocessableEntity, "INSUFFICIENT_HOURS"},
	{attendance.ErrMissingReason, http.StatusUnprocessableEntity, "MISSING_REASON"},
}

func handlePolicyError(w http.ResponseWriter, pe *attendance.PolicyError) {
	var details map[string]string
	if pe.Detail != "" || pe.Remaining > 0 {
		details = make(map[string]string)
	}
	if pe.Detail != "" {
		details["reason"] = pe.Detail
	}
	if pe.Remaining > 0 {
		details["remaining"] = attendance.FormatRemaining(pe.Remaining)
		details["remaining_minutes"] = fmt.Sprintf("%d", int(pe.Remaining.Round(time.Minute).Minutes()))
	}

	for _, pc := range policyCodes {
		if errors.Is(pe, pc.err) {
			Rejected(w, pc.status, pc.code, pc.err.Error(), details)
			return
		}
	}
	Rejected(w, http.StatusUnprocessableEntity, "ATTENDANCE_REJECTED", pe.Error(), details)
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance policy rejections
	var policyErr *attendance.PolicyError
	if errors.As(err, &policyErr) {
		handlePolicyError(w, policyErr)
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, jwt.ErrEmployeeClaimMissing):
		Forbidden(w, "Token is not bound to an employee")
	case errors.Is(err, jwt.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Employee domain errors
	case errors.Is(err, employee.ErrBranchNotFound):
		NotFound(w, "Branch has no active employees")

	// Report domain errors
	case errors.Is(err, report.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrRangeTooLong):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, report.ErrNoEmployees):
		NotFound(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
