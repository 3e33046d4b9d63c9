package document

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSnapshot() report.ReportSnapshot {
	row := func(date, obs string) report.DailyAggregateRow {
		return report.DailyAggregateRow{
			EmployeeID:             "emp-1",
			Date:                   date,
			BasePay:                decimal.RequireFromString("45.50"),
			DaytimeOvertimeMinutes: 30,
			DaytimeOvertimePay:     decimal.RequireFromString("4.10"),
			Deductions:             decimal.RequireFromString("2.00"),
			NetPayForDay:           decimal.RequireFromString("47.60"),
			Observation:            obs,
			EntryClock:             "08:00",
			ExitClock:              "17:30",
		}
	}
	return report.ReportSnapshot{
		EmployeeID:   "emp-1",
		EmployeeName: "José Núñez",
		StartDate:    "2024-03-04",
		EndDate:      "2024-03-05",
		Days: []report.DailyAggregateRow{
			row("2024-03-04", "médico"),
			row("2024-03-05", strings.Repeat("very long observation ", 20)),
		},
		Advances: []report.AdvanceRecord{
			{ID: "a1", RequestDate: "2024-03-05", Amount: decimal.RequireFromString("10.00"), Description: "bus"},
			{ID: "a2", RequestDate: "2024-02-28", Amount: decimal.RequireFromString("5.00")},
		},
	}
}

func TestExcelGenerator(t *testing.T) {
	layout := DefaultLayout()
	layout.CompanyName = "Acme"
	gen := NewExcelGenerator(layout)
	assert.Equal(t, export.FormatExcel, gen.Format())

	var buf bytes.Buffer
	require.NoError(t, gen.Generate(sampleSnapshot(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, "Payroll", f.GetSheetName(0))
	rows, err := f.GetRows("Payroll")
	require.NoError(t, err)

	assert.Equal(t, "Acme", rows[0][0])
	assert.Contains(t, rows[1][0], "José Núñez")

	header := rows[3]
	assert.Equal(t, "Date", header[0])
	assert.Equal(t, "Observation", header[14])

	assert.Equal(t, "2024-03-04", rows[4][0])
	assert.Equal(t, "médico", rows[4][14])

	advances, err := f.GetCellValue("Payroll", "M6", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assertNumber(t, 10, advances)
	netAfter, err := f.GetCellValue("Payroll", "N6", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assertNumber(t, 37.6, netAfter)

	assert.Equal(t, "Total", rows[6][0])
	minutes, err := f.GetCellValue("Payroll", "E7")
	require.NoError(t, err)
	assert.Equal(t, "60", minutes)

	assert.Contains(t, rows[8][0], "1 advance(s)")
}

func assertNumber(t *testing.T, want float64, raw string) {
	t.Helper()
	got, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 0.001)
}

func TestExcelGenerator_HiddenColumns(t *testing.T) {
	layout := DefaultLayout()
	layout.HideColumns = []string{"entry", "exit"}

	var buf bytes.Buffer
	require.NoError(t, NewExcelGenerator(layout).Generate(sampleSnapshot(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	header, err := f.GetCellValue("Payroll", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Base pay", header)
}

func TestPDFGenerator(t *testing.T) {
	gen := NewPDFGenerator(DefaultLayout())
	gen.now = func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }
	assert.Equal(t, export.FormatPDF, gen.Format())

	var buf bytes.Buffer
	require.NoError(t, gen.Generate(sampleSnapshot(), &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestPDFGenerator_ManyRowsPaginates(t *testing.T) {
	s := sampleSnapshot()
	base := s.Days[0]
	s.Days = nil
	for d := 1; d <= 31; d++ {
		day := base
		day.Date = time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		s.Days = append(s.Days, day, day)
	}

	var buf bytes.Buffer
	require.NoError(t, NewPDFGenerator(DefaultLayout()).Generate(s, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFGenerator_LongObservationIsPrintedInFull(t *testing.T) {
	observation := "Employee left early for a medical appointment, approved by supervisor"
	s := sampleSnapshot()
	s.Days[0].Observation = observation

	gen := NewPDFGenerator(DefaultLayout())
	gen.compress = false
	var buf bytes.Buffer
	require.NoError(t, gen.Generate(s, &buf))

	for _, word := range strings.Fields(observation) {
		assert.Contains(t, buf.String(), word)
	}
	assert.NotContains(t, buf.String(), "...")
}

func newTestPDF() *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont(pdfFontFamily, "", 7)
	return pdf
}

func TestWrapText(t *testing.T) {
	pdf := newTestPDF()
	text := "Employee left early for a medical appointment, approved by supervisor"
	width := 37.4

	lines := wrapText(pdf, text, width)

	assert.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, pdf.GetStringWidth(line), width, line)
	}
	assert.Equal(t, text, strings.Join(lines, " "))
}

func TestWrapText_BreaksLongWords(t *testing.T) {
	pdf := newTestPDF()
	word := strings.Repeat("x", 200)

	lines := wrapText(pdf, word, 20)

	assert.Greater(t, len(lines), 1)
	assert.Equal(t, word, strings.Join(lines, ""))
}

func TestWrapText_ShortTextAndNewlines(t *testing.T) {
	pdf := newTestPDF()

	assert.Equal(t, []string{"ok"}, wrapText(pdf, "ok", 30))
	assert.Equal(t, []string{""}, wrapText(pdf, "", 30))
	assert.Equal(t, []string{"first", "second"}, wrapText(pdf, "first\nsecond", 30))
}

func TestPDFGenerator_VeryLongObservationSpansPages(t *testing.T) {
	s := sampleSnapshot()
	s.Days[1].Observation = strings.Repeat("overtime approved by the shift supervisor ", 60)

	var buf bytes.Buffer
	require.NoError(t, NewPDFGenerator(DefaultLayout()).Generate(s, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
