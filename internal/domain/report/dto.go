package report

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// PAYROLL REPORT
// ========================================

type PayrollReportRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (r *PayrollReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = append(errs, validator.ValidateDateRange("start_date", r.StartDate, "end_date", r.EndDate)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollReportResponse struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	FetchedAt    string `json:"fetched_at"`
	GeneratedAt  string `json:"generated_at"`
	Stale        bool   `json:"stale"` // observations were saved but the report could not be reloaded

	Rows              []PayrollReportRow `json:"rows"`
	Totals            PayrollReportTotal `json:"totals"`
	DirtyDates        []string           `json:"dirty_dates"`
	UnmatchedAdvances []AdvanceResponse  `json:"unmatched_advances,omitempty"`
}

type PayrollReportRow struct {
	Date       string `json:"date"`
	EntryClock string `json:"entry_clock"`
	ExitClock  string `json:"exit_clock"`

	// Server aggregates
	BasePay                  decimal.Decimal `json:"base_pay"`
	DaytimeOvertimeMinutes   int             `json:"daytime_overtime_minutes"`
	DaytimeOvertimePay       decimal.Decimal `json:"daytime_overtime_pay"`
	NighttimeOvertimeMinutes int             `json:"nighttime_overtime_minutes"`
	NighttimeOvertimePay     decimal.Decimal `json:"nighttime_overtime_pay"`
	DeficitMinutes           int             `json:"deficit_minutes"`
	Deductions               decimal.Decimal `json:"deductions"`
	NetPayForDay             decimal.Decimal `json:"net_pay_for_day"`
	Observation              string          `json:"observation"`

	// Derived
	ExtrasPay           decimal.Decimal `json:"extras_pay"`
	TotalAdvancesForDay decimal.Decimal `json:"total_advances_for_day"`
	NetAfterAdvances    decimal.Decimal `json:"net_after_advances"`
	AdvanceNotes        string          `json:"advance_notes,omitempty"`

	// Local edit state
	PendingObservation *string `json:"pending_observation,omitempty"`
	Dirty              bool    `json:"dirty"`
}

type PayrollReportTotal struct {
	Days                     int             `json:"days"`
	BasePay                  decimal.Decimal `json:"base_pay"`
	DaytimeOvertimeMinutes   int             `json:"daytime_overtime_minutes"`
	NighttimeOvertimeMinutes int             `json:"nighttime_overtime_minutes"`
	DeficitMinutes           int             `json:"deficit_minutes"`
	ExtrasPay                decimal.Decimal `json:"extras_pay"`
	Deductions               decimal.Decimal `json:"deductions"`
	NetPay                   decimal.Decimal `json:"net_pay"`
	Advances                 decimal.Decimal `json:"advances"`
	NetAfterAdvances         decimal.Decimal `json:"net_after_advances"`
}

type AdvanceResponse struct {
	ID          string          `json:"id"`
	RequestDate string          `json:"request_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// NewPayrollReportResponse renders a snapshot together with the pending edits of its buffer.
func NewPayrollReportResponse(s ReportSnapshot, pending map[RowKey]string, stale bool) PayrollReportResponse {
	rows := s.Rows()
	out := PayrollReportResponse{
		EmployeeID:   s.EmployeeID,
		EmployeeName: s.EmployeeName,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		FetchedAt:    s.FetchedAt.Format(time.RFC3339),
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Stale:        stale,
		Rows:         make([]PayrollReportRow, 0, len(rows)),
		DirtyDates:   []string{},
	}

	for _, r := range rows {
		row := PayrollReportRow{
			Date:                     r.Date,
			EntryClock:               r.EntryClock,
			ExitClock:                r.ExitClock,
			BasePay:                  r.BasePay,
			DaytimeOvertimeMinutes:   r.DaytimeOvertimeMinutes,
			DaytimeOvertimePay:       r.DaytimeOvertimePay,
			NighttimeOvertimeMinutes: r.NighttimeOvertimeMinutes,
			NighttimeOvertimePay:     r.NighttimeOvertimePay,
			DeficitMinutes:           r.DeficitMinutes,
			Deductions:               r.Deductions,
			NetPayForDay:             r.NetPayForDay,
			Observation:              r.Observation,
			ExtrasPay:                r.ExtrasPay,
			TotalAdvancesForDay:      r.TotalAdvancesForDay,
			NetAfterAdvances:         r.NetAfterAdvances,
			AdvanceNotes:             r.AdvanceNotes,
		}
		if value, ok := pending[r.Key()]; ok {
			v := value
			row.PendingObservation = &v
			row.Dirty = true
			out.DirtyDates = append(out.DirtyDates, r.Date)
		}
		out.Rows = append(out.Rows, row)
	}

	t := Totals(rows)
	out.Totals = PayrollReportTotal{
		Days:                     t.Days,
		BasePay:                  t.BasePay,
		DaytimeOvertimeMinutes:   t.DaytimeOvertimeMinutes,
		NighttimeOvertimeMinutes: t.NighttimeOvertimeMinutes,
		DeficitMinutes:           t.DeficitMinutes,
		ExtrasPay:                t.ExtrasPay,
		Deductions:               t.Deductions,
		NetPay:                   t.NetPay,
		Advances:                 t.Advances,
		NetAfterAdvances:         t.NetAfterAdvances,
	}

	for _, adv := range s.UnmatchedAdvances() {
		out.UnmatchedAdvances = append(out.UnmatchedAdvances, AdvanceResponse{
			ID:          adv.ID,
			RequestDate: adv.RequestDate,
			Amount:      adv.Amount,
			Description: adv.Description,
		})
	}

	return out
}

// ========================================
// OBSERVATION EDITS
// ========================================

type ObservationEditRequest struct {
	Date        string `json:"-"`
	Observation string `json:"observation"`
}

func (r *ObservationEditRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(r.Observation) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "observation",
			Message: "observation must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ObservationEditResponse struct {
	Date       string   `json:"date"`
	Pending    string   `json:"pending_observation"`
	DirtyDates []string `json:"dirty_dates"`
}
