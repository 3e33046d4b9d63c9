package hrapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/shopspring/decimal"
)

type payrollReportData struct {
	Employee struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"employee"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Days      []dailyData   `json:"days"`
	Advances  []advanceData `json:"advances"`
}

type dailyData struct {
	Date                     string          `json:"date"`
	BasePay                  decimal.Decimal `json:"base_pay"`
	DaytimeOvertimeMinutes   int             `json:"daytime_overtime_minutes"`
	DaytimeOvertimePay       decimal.Decimal `json:"daytime_overtime_pay"`
	NighttimeOvertimeMinutes int             `json:"nighttime_overtime_minutes"`
	NighttimeOvertimePay     decimal.Decimal `json:"nighttime_overtime_pay"`
	DeficitMinutes           int             `json:"deficit_minutes"`
	Deductions               decimal.Decimal `json:"deductions"`
	NetPayForDay             decimal.Decimal `json:"net_pay_for_day"`
	Observation              string          `json:"observation"`
	EntryClock               string          `json:"entry_clock"`
	ExitClock                string          `json:"exit_clock"`
}

type advanceData struct {
	ID          string          `json:"id"`
	RequestDate string          `json:"request_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// GetPayrollReport implements report.ReportRepository.
func (c *Client) GetPayrollReport(ctx context.Context, employeeID, startDate, endDate string) (report.ReportSnapshot, error) {
	var data payrollReportData
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/reports/payroll/daily",
		query: url.Values{
			"employee_id": {employeeID},
			"start_date":  {startDate},
			"end_date":    {endDate},
		},
	}, &data)
	if err != nil {
		if IsNotFound(err) {
			return report.ReportSnapshot{}, report.ErrEmployeeNotFound
		}
		return report.ReportSnapshot{}, fmt.Errorf("%w: %w", report.ErrUpstream, err)
	}

	snapshot := report.ReportSnapshot{
		EmployeeID:   employeeID,
		EmployeeName: data.Employee.Name,
		StartDate:    startDate,
		EndDate:      endDate,
		Days:         make([]report.DailyAggregateRow, 0, len(data.Days)),
		Advances:     make([]report.AdvanceRecord, 0, len(data.Advances)),
		FetchedAt:    time.Now(),
	}
	for _, d := range data.Days {
		snapshot.Days = append(snapshot.Days, report.DailyAggregateRow{
			EmployeeID:               employeeID,
			Date:                     d.Date,
			BasePay:                  d.BasePay,
			DaytimeOvertimeMinutes:   d.DaytimeOvertimeMinutes,
			DaytimeOvertimePay:       d.DaytimeOvertimePay,
			NighttimeOvertimeMinutes: d.NighttimeOvertimeMinutes,
			NighttimeOvertimePay:     d.NighttimeOvertimePay,
			DeficitMinutes:           d.DeficitMinutes,
			Deductions:               d.Deductions,
			NetPayForDay:             d.NetPayForDay,
			Observation:              d.Observation,
			EntryClock:               d.EntryClock,
			ExitClock:                d.ExitClock,
		})
	}
	for _, a := range data.Advances {
		snapshot.Advances = append(snapshot.Advances, report.AdvanceRecord{
			ID:          a.ID,
			EmployeeID:  employeeID,
			RequestDate: a.RequestDate,
			Amount:      a.Amount,
			Description: a.Description,
		})
	}
	return snapshot, nil
}

// SetDailyObservation implements report.ReportRepository.
func (c *Client) SetDailyObservation(ctx context.Context, employeeID, date, text string) error {
	err := c.do(ctx, request{
		method: http.MethodPut,
		path: fmt.Sprintf("/api/v1/reports/payroll/daily/%s/%s/observation",
			url.PathEscape(employeeID), url.PathEscape(date)),
		body: map[string]string{"observation": text},
	}, nil)
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %w", report.ErrRowNotInReport, err)
		}
		return fmt.Errorf("%w: %w", report.ErrPersistenceFailure, err)
	}
	return nil
}
