package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ReportHandler interface {
	// Payroll report session
	Open(w http.ResponseWriter, r *http.Request)
	Close(w http.ResponseWriter, r *http.Request)

	// Observations
	EditObservation(w http.ResponseWriter, r *http.Request)
	FlushObservations(w http.ResponseWriter, r *http.Request)

	// Export
	Export(w http.ResponseWriter, r *http.Request)
	Archived(w http.ResponseWriter, r *http.Request)
	DeleteArchived(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	exportService export.ExportService
}

func NewReportHandler(reportService report.ReportService, exportService export.ExportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		exportService: exportService,
	}
}

// Open handles GET /reports/payroll?employee_id&start_date&end_date
func (h *reportHandlerImpl) Open(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := report.PayrollReportRequest{
		EmployeeID: query.Get("employee_id"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
	}

	result, err := h.reportService.OpenPayrollReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Close handles DELETE /reports/payroll
func (h *reportHandlerImpl) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.reportService.ClosePayrollReport(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll report closed", nil)
}

// EditObservation handles PUT /reports/payroll/observations/{date}
func (h *reportHandlerImpl) EditObservation(w http.ResponseWriter, r *http.Request) {
	var req report.ObservationEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.Date = chi.URLParam(r, "date")

	result, err := h.reportService.EditObservation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// FlushObservations handles POST /reports/payroll/observations/flush
func (h *reportHandlerImpl) FlushObservations(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.FlushObservations(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Observations saved", result)
}

// Export handles GET /reports/payroll/export?format=pdf|xlsx
func (h *reportHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatPDF
	}

	doc, err := h.exportService.ExportPayrollReport(r.Context(), format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if doc.ArchivePath != "" {
		w.Header().Set("X-Archive-Path", doc.ArchivePath)
	}
	response.Attachment(w, doc.Filename, doc.ContentType, doc.Content)
}

// Archived handles GET /reports/payroll/archive?path=exports/...
func (h *reportHandlerImpl) Archived(w http.ResponseWriter, r *http.Request) {
	doc, err := h.exportService.ArchivedExport(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, doc.Filename, doc.ContentType, doc.Content)
}

// DeleteArchived handles DELETE /reports/payroll/archive?path=exports/...
func (h *reportHandlerImpl) DeleteArchived(w http.ResponseWriter, r *http.Request) {
	if err := h.exportService.DeleteArchivedExport(r.Context(), r.URL.Query().Get("path")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Archived export deleted", nil)
}
