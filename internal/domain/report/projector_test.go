package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleRow(date string) DailyAggregateRow {
	return DailyAggregateRow{
		EmployeeID:               "emp-1",
		Date:                     date,
		BasePay:                  dec("45.50"),
		DaytimeOvertimeMinutes:   60,
		DaytimeOvertimePay:       dec("7.10"),
		NighttimeOvertimeMinutes: 30,
		NighttimeOvertimePay:     dec("4.45"),
		DeficitMinutes:           0,
		Deductions:               dec("3.20"),
		NetPayForDay:             dec("53.85"),
		Observation:              "ok",
		EntryClock:               "08:00",
		ExitClock:                "18:30",
	}
}

func TestProject_NoAdvances(t *testing.T) {
	row := sampleRow("2024-03-04")

	got := Project(row, nil)

	assert.True(t, got.TotalAdvancesForDay.IsZero())
	assert.True(t, got.NetAfterAdvances.Equal(row.NetPayForDay))
	assert.Equal(t, "", got.AdvanceNotes)
	assert.Equal(t, row, got.DailyAggregateRow)
}

func TestProject_ExtrasPayIsSumOfOvertimePay(t *testing.T) {
	got := Project(sampleRow("2024-03-04"), []AdvanceRecord{})

	assert.Equal(t, "11.55", got.ExtrasPay.StringFixed(2))
}

func TestProject_SubtractsSameDayAdvancesExactly(t *testing.T) {
	row := sampleRow("2024-03-04")
	advances := []AdvanceRecord{
		{ID: "a1", EmployeeID: "emp-1", RequestDate: "2024-03-04", Amount: dec("10.10"), Description: "bus fare"},
		{ID: "a2", EmployeeID: "emp-1", RequestDate: "2024-03-04", Amount: dec("20.20"), Description: "  "},
		{ID: "a3", EmployeeID: "emp-1", RequestDate: "2024-03-04", Amount: dec("0.30"), Description: "lunch"},
		{ID: "a4", EmployeeID: "emp-1", RequestDate: "2024-03-05", Amount: dec("99.00"), Description: "other day"},
	}

	got := Project(row, advances)

	assert.Equal(t, "30.60", got.TotalAdvancesForDay.StringFixed(2))
	assert.Equal(t, "23.25", got.NetAfterAdvances.StringFixed(2))
	assert.True(t, got.NetAfterAdvances.Equal(row.NetPayForDay.Sub(dec("30.60"))))
	assert.Equal(t, "bus fare; lunch", got.AdvanceNotes)
}

func TestProject_DateMatchIsExact(t *testing.T) {
	row := sampleRow("2024-03-04")
	advances := []AdvanceRecord{
		{RequestDate: "2024-03-04T09:00:00", Amount: dec("5")},
		{RequestDate: "2024-3-4", Amount: dec("5")},
	}

	got := Project(row, advances)

	assert.True(t, got.TotalAdvancesForDay.IsZero())
}

func TestProject_AdvancesCanExceedNetPay(t *testing.T) {
	row := sampleRow("2024-03-04")

	got := Project(row, []AdvanceRecord{{RequestDate: "2024-03-04", Amount: dec("60.00")}})

	assert.Equal(t, "-6.15", got.NetAfterAdvances.StringFixed(2))
}

func TestReportSnapshot_RowsReflectCurrentAdvances(t *testing.T) {
	snap := ReportSnapshot{
		EmployeeID: "emp-1",
		StartDate:  "2024-03-04",
		EndDate:    "2024-03-05",
		Days:       []DailyAggregateRow{sampleRow("2024-03-04"), sampleRow("2024-03-05")},
		Advances:   []AdvanceRecord{{ID: "a1", RequestDate: "2024-03-05", Amount: dec("3.85")}},
	}

	rows := snap.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "53.85", rows[0].NetAfterAdvances.StringFixed(2))
	assert.Equal(t, "50.00", rows[1].NetAfterAdvances.StringFixed(2))

	snap.Advances = nil
	rows = snap.Rows()
	assert.Equal(t, "53.85", rows[1].NetAfterAdvances.StringFixed(2))
}

func TestReportSnapshot_UnmatchedAdvancesDoNotCount(t *testing.T) {
	snap := ReportSnapshot{
		Days: []DailyAggregateRow{sampleRow("2024-03-04")},
		Advances: []AdvanceRecord{
			{ID: "in", RequestDate: "2024-03-04", Amount: dec("1.00")},
			{ID: "out", RequestDate: "2024-02-28", Amount: dec("50.00")},
		},
	}

	unmatched := snap.UnmatchedAdvances()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "out", unmatched[0].ID)

	totals := snap.Totals()
	assert.Equal(t, "1.00", totals.Advances.StringFixed(2))
}

func TestTotals(t *testing.T) {
	rows := []DerivedReportRow{
		Project(sampleRow("2024-03-04"), nil),
		Project(sampleRow("2024-03-05"), []AdvanceRecord{{RequestDate: "2024-03-05", Amount: dec("10")}}),
	}

	got := Totals(rows)

	assert.Equal(t, 2, got.Days)
	assert.Equal(t, "91.00", got.BasePay.StringFixed(2))
	assert.Equal(t, 120, got.DaytimeOvertimeMinutes)
	assert.Equal(t, 60, got.NighttimeOvertimeMinutes)
	assert.Equal(t, "23.10", got.ExtrasPay.StringFixed(2))
	assert.Equal(t, "6.40", got.Deductions.StringFixed(2))
	assert.Equal(t, "107.70", got.NetPay.StringFixed(2))
	assert.Equal(t, "10.00", got.Advances.StringFixed(2))
	assert.Equal(t, "97.70", got.NetAfterAdvances.StringFixed(2))
}

func TestTotals_Empty(t *testing.T) {
	got := Totals(nil)

	assert.Equal(t, 0, got.Days)
	assert.True(t, got.NetAfterAdvances.IsZero())
}

func TestReportSnapshot_Row(t *testing.T) {
	snap := ReportSnapshot{Days: []DailyAggregateRow{sampleRow("2024-03-04")}}

	row, ok := snap.Row(RowKey{EmployeeID: "emp-1", Date: "2024-03-04"})
	assert.True(t, ok)
	assert.Equal(t, "ok", row.Observation)

	_, ok = snap.Row(RowKey{EmployeeID: "emp-2", Date: "2024-03-04"})
	assert.False(t, ok)
}

func TestPayrollReportRequest_Validate(t *testing.T) {
	req := PayrollReportRequest{EmployeeID: "emp-1", StartDate: "2024-03-01", EndDate: "2024-03-31"}
	assert.NoError(t, req.Validate())

	req = PayrollReportRequest{StartDate: "2024-03-31", EndDate: "2024-03-01"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee_id")
	assert.Contains(t, err.Error(), "end_date")
}
