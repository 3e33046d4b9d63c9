package report

import "context"

// ReportService defines the payroll report session of the authenticated user
type ReportService interface {
	// OpenPayrollReport fetches the report; same filters keep pending edits, new filters abandon them
	OpenPayrollReport(ctx context.Context, req PayrollReportRequest) (PayrollReportResponse, error)

	// EditObservation buffers an observation edit for one day of the open report
	EditObservation(ctx context.Context, req ObservationEditRequest) (ObservationEditResponse, error)

	// FlushObservations persists every pending edit and returns the reloaded report
	FlushObservations(ctx context.Context) (PayrollReportResponse, error)

	// ClosePayrollReport abandons the open report and its pending edits
	ClosePayrollReport(ctx context.Context) error
}
