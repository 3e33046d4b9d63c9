package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/confirm"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/spreadsheet"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/service/observation"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	HandleErrorWithData(w, err, nil)
}

// HandleErrorWithData is HandleError for operations that may have partly succeeded; data is
// included in upstream failure responses.
func HandleErrorWithData(w http.ResponseWriter, err error, data interface{}) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, jwt.ErrMissingUserClaim):
		Unauthorized(w, "Unauthorized")

	// Shift inference
	case errors.Is(err, punch.ErrMissingRequiredField),
		errors.Is(err, punch.ErrShiftSpansMultipleDays),
		errors.Is(err, punch.ErrDuplicateKind),
		errors.Is(err, punch.ErrInvalidKind),
		errors.Is(err, punch.ErrInvalidClockTime):
		UnprocessableEntity(w, "INVALID_SHIFT", err.Error())

	// Import
	case errors.Is(err, punch.ErrImportHeader),
		errors.Is(err, punch.ErrImportFileInvalid),
		errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		BadRequest(w, err.Error(), nil)

	// Export
	case errors.Is(err, export.ErrUnsupportedFormat):
		BadRequest(w, "format must be pdf or xlsx", nil)
	case errors.Is(err, export.ErrInvalidArchivePath):
		BadRequest(w, "path must be an archived export", nil)
	case errors.Is(err, export.ErrArchiveNotFound):
		NotFound(w, "Archived export not found")
	case errors.Is(err, export.ErrArchiveDisabled):
		NotFound(w, "Export archiving is not enabled")
	case errors.Is(err, export.ErrExportAborted):
		BadGateway(w, "EXPORT_ABORTED", "Export aborted: pending observations could not be saved", data)

	// HR API, checked before not-found since write failures may wrap a missing row
	case errors.Is(err, punch.ErrSubmissionFailed):
		BadGateway(w, "SUBMISSION_FAILED", err.Error(), data)
	case errors.Is(err, report.ErrPersistenceFailure):
		BadGateway(w, "PERSISTENCE_FAILURE", "Changes could not be saved to the HR API", data)
	case errors.Is(err, report.ErrUpstream):
		BadGateway(w, "UPSTREAM_ERROR", "HR API request failed", data)

	// Not found
	case errors.Is(err, punch.ErrPunchNotFound):
		NotFound(w, "Punch not found")
	case errors.Is(err, report.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, report.ErrRowNotInReport):
		NotFound(w, "Date is not part of the open report")
	case errors.Is(err, report.ErrNoActiveSession):
		NotFound(w, "No payroll report is open")
	case errors.Is(err, confirm.ErrActionNotFound):
		NotFound(w, "Pending action not found")

	// Confirmation state
	case errors.Is(err, confirm.ErrActionExpired):
		Gone(w, "Pending action expired")
	case errors.Is(err, confirm.ErrNotOwner):
		Forbidden(w, "Pending action belongs to another user")

	// Edit session
	case errors.Is(err, observation.ErrFlushInProgress):
		Conflict(w, "Observations are already being saved")
	case errors.Is(err, observation.ErrSessionAbandoned):
		Conflict(w, "The payroll report was closed or replaced")

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
