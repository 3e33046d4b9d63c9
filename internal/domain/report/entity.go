package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyAggregateRow is the server-computed payroll result for one employee and calendar date.
// It is never recomputed here.
type DailyAggregateRow struct {
	EmployeeID               string
	Date                     string // YYYY-MM-DD
	BasePay                  decimal.Decimal
	DaytimeOvertimeMinutes   int
	DaytimeOvertimePay       decimal.Decimal
	NighttimeOvertimeMinutes int
	NighttimeOvertimePay     decimal.Decimal
	DeficitMinutes           int
	Deductions               decimal.Decimal
	NetPayForDay             decimal.Decimal
	Observation              string
	EntryClock               string // raw echo, e.g. "08:02"
	ExitClock                string
}

func (r DailyAggregateRow) Key() RowKey {
	return RowKey{EmployeeID: r.EmployeeID, Date: r.Date}
}

// AdvanceRecord is a salary advance requested on a given date.
type AdvanceRecord struct {
	ID          string
	EmployeeID  string
	RequestDate string // YYYY-MM-DD
	Amount      decimal.Decimal
	Description string
}

// DerivedReportRow is a DailyAggregateRow plus the fields derived from that day's advances.
type DerivedReportRow struct {
	DailyAggregateRow
	TotalAdvancesForDay decimal.Decimal
	ExtrasPay           decimal.Decimal
	NetAfterAdvances    decimal.Decimal
	AdvanceNotes        string
}

// RowKey identifies one report row independently of its position.
type RowKey struct {
	EmployeeID string
	Date       string
}

type ReportTotals struct {
	Days                     int
	BasePay                  decimal.Decimal
	DaytimeOvertimeMinutes   int
	NighttimeOvertimeMinutes int
	DeficitMinutes           int
	ExtrasPay                decimal.Decimal
	Deductions               decimal.Decimal
	NetPay                   decimal.Decimal
	Advances                 decimal.Decimal
	NetAfterAdvances         decimal.Decimal
}

// ReportSnapshot is the report as last fetched from the HR API. Derived rows and totals are
// projected from Days and Advances on every call, so they can't go stale.
type ReportSnapshot struct {
	EmployeeID   string
	EmployeeName string
	StartDate    string
	EndDate      string
	Days         []DailyAggregateRow
	Advances     []AdvanceRecord
	FetchedAt    time.Time
}

// Rows projects every day of the snapshot against its advances.
func (s ReportSnapshot) Rows() []DerivedReportRow {
	rows := make([]DerivedReportRow, 0, len(s.Days))
	for _, day := range s.Days {
		rows = append(rows, Project(day, s.Advances))
	}
	return rows
}

func (s ReportSnapshot) Totals() ReportTotals {
	return Totals(s.Rows())
}

// Row returns the aggregate row for key.
func (s ReportSnapshot) Row(key RowKey) (DailyAggregateRow, bool) {
	for _, day := range s.Days {
		if day.Key() == key {
			return day, true
		}
	}
	return DailyAggregateRow{}, false
}

// UnmatchedAdvances returns the advances whose date is not a day of the report.
// They contribute nothing to any row.
func (s ReportSnapshot) UnmatchedAdvances() []AdvanceRecord {
	dates := make(map[string]struct{}, len(s.Days))
	for _, day := range s.Days {
		dates[day.Date] = struct{}{}
	}

	var unmatched []AdvanceRecord
	for _, adv := range s.Advances {
		if _, ok := dates[adv.RequestDate]; !ok {
			unmatched = append(unmatched, adv)
		}
	}
	return unmatched
}

// SameFilters reports whether both snapshots cover the same employee and date range.
func (s ReportSnapshot) SameFilters(employeeID, startDate, endDate string) bool {
	return s.EmployeeID == employeeID && s.StartDate == startDate && s.EndDate == endDate
}
