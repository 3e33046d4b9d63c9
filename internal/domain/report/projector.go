package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AdvanceNotesSeparator joins the descriptions of a day's advances.
const AdvanceNotesSeparator = "; "

// Project combines one server row with the advances requested on the same date.
// Only sums and differences of already-final amounts are computed; payroll figures are
// taken verbatim from the row.
func Project(row DailyAggregateRow, advances []AdvanceRecord) DerivedReportRow {
	total := decimal.Zero
	var notes []string
	for _, adv := range advances {
		if adv.RequestDate != row.Date {
			continue
		}
		total = total.Add(adv.Amount)
		if desc := strings.TrimSpace(adv.Description); desc != "" {
			notes = append(notes, desc)
		}
	}

	return DerivedReportRow{
		DailyAggregateRow:   row,
		TotalAdvancesForDay: total,
		ExtrasPay:           row.DaytimeOvertimePay.Add(row.NighttimeOvertimePay),
		NetAfterAdvances:    row.NetPayForDay.Sub(total),
		AdvanceNotes:        strings.Join(notes, AdvanceNotesSeparator),
	}
}

// Totals sums the derived rows for the report footer.
func Totals(rows []DerivedReportRow) ReportTotals {
	t := ReportTotals{
		Days:             len(rows),
		BasePay:          decimal.Zero,
		ExtrasPay:        decimal.Zero,
		Deductions:       decimal.Zero,
		NetPay:           decimal.Zero,
		Advances:         decimal.Zero,
		NetAfterAdvances: decimal.Zero,
	}
	for _, r := range rows {
		t.BasePay = t.BasePay.Add(r.BasePay)
		t.DaytimeOvertimeMinutes += r.DaytimeOvertimeMinutes
		t.NighttimeOvertimeMinutes += r.NighttimeOvertimeMinutes
		t.DeficitMinutes += r.DeficitMinutes
		t.ExtrasPay = t.ExtrasPay.Add(r.ExtrasPay)
		t.Deductions = t.Deductions.Add(r.Deductions)
		t.NetPay = t.NetPay.Add(r.NetPayForDay)
		t.Advances = t.Advances.Add(r.TotalAdvancesForDay)
		t.NetAfterAdvances = t.NetAfterAdvances.Add(r.NetAfterAdvances)
	}
	return t
}
