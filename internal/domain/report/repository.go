package report

import "context"

// ReportRepository is the payroll-report side of the HR API.
type ReportRepository interface {
	// GetPayrollReport returns the daily aggregates and the advances for the range
	GetPayrollReport(ctx context.Context, employeeID, startDate, endDate string) (ReportSnapshot, error)

	// SetDailyObservation stores the free-text observation of one day
	SetDailyObservation(ctx context.Context, employeeID, date, text string) error
}
