package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/confirm"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/service/observation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"validation", validator.ValidationErrors{{Field: "date", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"second midnight", punch.ErrShiftSpansMultipleDays, http.StatusUnprocessableEntity, "INVALID_SHIFT"},
		{"missing entry", punch.ErrMissingRequiredField, http.StatusUnprocessableEntity, "INVALID_SHIFT"},
		{"row not in report", fmt.Errorf("%w: emp-1 2024-03-09", report.ErrRowNotInReport), http.StatusNotFound, "NOT_FOUND"},
		{"no session", report.ErrNoActiveSession, http.StatusNotFound, "NOT_FOUND"},
		{"flush in progress", observation.ErrFlushInProgress, http.StatusConflict, "CONFLICT"},
		{"action expired", confirm.ErrActionExpired, http.StatusGone, "GONE"},
		{"not owner", confirm.ErrNotOwner, http.StatusForbidden, "FORBIDDEN"},
		{"persistence", report.ErrPersistenceFailure, http.StatusBadGateway, "PERSISTENCE_FAILURE"},
		{
			"persistence of a missing row",
			fmt.Errorf("%w: %w", report.ErrPersistenceFailure, fmt.Errorf("%w: 404", report.ErrRowNotInReport)),
			http.StatusBadGateway, "PERSISTENCE_FAILURE",
		},
		{
			"export aborted",
			fmt.Errorf("%w: %w", export.ErrExportAborted, report.ErrPersistenceFailure),
			http.StatusBadGateway, "EXPORT_ABORTED",
		},
		{"unsupported format", export.ErrUnsupportedFormat, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			HandleError(rec, tt.err)

			assert.Equal(t, tt.want, rec.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestHandleErrorWithData_KeepsPartialResult(t *testing.T) {
	rec := httptest.NewRecorder()
	partial := punch.JornadaSubmitResponse{EmployeeID: "emp-1", Pending: []punch.Kind{punch.KindExit}}

	HandleErrorWithData(rec, fmt.Errorf("%w: EXIT", punch.ErrSubmissionFailed), partial)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending":["EXIT"]`)
	assert.Contains(t, rec.Body.String(), "SUBMISSION_FAILED")
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()

	Attachment(rec, "payroll_emp-1_2024-03-01_2024-03-31.xlsx", export.FormatExcel.ContentType(), []byte("data"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=payroll_emp-1_2024-03-01_2024-03-31.xlsx", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "data", rec.Body.String())
}
