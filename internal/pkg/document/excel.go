package document

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const excelDefaultSheet = "Sheet1"

// ExcelGenerator renders a report as a single-sheet .xlsx workbook.
type ExcelGenerator struct {
	layout Layout
}

func NewExcelGenerator(layout Layout) *ExcelGenerator {
	return &ExcelGenerator{layout: layout}
}

func (g *ExcelGenerator) Format() export.Format {
	return export.FormatExcel
}

func (g *ExcelGenerator) Generate(s report.ReportSnapshot, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := g.layout.SheetName
	if err := f.SetSheetName(excelDefaultSheet, sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newExcelStyles(f, g.layout.CurrencySymbol)
	if err != nil {
		return err
	}

	cols := g.layout.Columns()
	row := 1

	if g.layout.CompanyName != "" {
		if err := f.SetCellValue(sheet, "A1", g.layout.CompanyName); err != nil {
			return err
		}
		row++
	}
	titleCell := cellName(1, row)
	if err := f.SetCellValue(sheet, titleCell, g.layout.heading(s)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, titleCell, titleCell, styles.title); err != nil {
		return err
	}
	row += 2

	headerRow := row
	for i, c := range cols {
		if err := f.SetCellValue(sheet, cellName(i+1, row), c.Label); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cellName(1, row), cellName(len(cols), row), styles.header); err != nil {
		return err
	}
	row++

	for _, r := range s.Rows() {
		for i, c := range cols {
			if err := setValue(f, sheet, cellName(i+1, row), rowValue(c.Key, r), styles.money, 0); err != nil {
				return err
			}
		}
		row++
	}

	totals := s.Totals()
	for i, c := range cols {
		v := totalValue(c.Key, totals)
		if v == nil {
			v = ""
		}
		if err := setValue(f, sheet, cellName(i+1, row), v, styles.totalMoney, styles.total); err != nil {
			return err
		}
	}

	if unmatched := s.UnmatchedAdvances(); len(unmatched) > 0 {
		row += 2
		note := fmt.Sprintf("%d advance(s) dated outside the report days were not applied.", len(unmatched))
		if err := f.SetCellValue(sheet, cellName(1, row), note); err != nil {
			return err
		}
	}

	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, c.width*0.9); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cellName(1, headerRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// setValue writes money with moneyStyle and anything else with otherStyle (0 keeps the default).
func setValue(f *excelize.File, sheet, cell string, v interface{}, moneyStyle, otherStyle int) error {
	if d, ok := v.(decimal.Decimal); ok {
		if err := f.SetCellFloat(sheet, cell, d.InexactFloat64(), 2, 64); err != nil {
			return err
		}
		return f.SetCellStyle(sheet, cell, cell, moneyStyle)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return err
	}
	if otherStyle == 0 {
		return nil
	}
	return f.SetCellStyle(sheet, cell, cell, otherStyle)
}

type excelStyles struct {
	title      int
	header     int
	money      int
	total      int
	totalMoney int
}

func newExcelStyles(f *excelize.File, currency string) (excelStyles, error) {
	var s excelStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, fmt.Errorf("failed to create title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"305496"}},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	moneyFormat := fmt.Sprintf(`"%s"#,##0.00;-"%s"#,##0.00`, currency, currency)
	if s.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFormat}); err != nil {
		return s, fmt.Errorf("failed to create money style: %w", err)
	}
	totalBorder := []excelize.Border{{Type: "top", Color: "000000", Style: 1}}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: totalBorder,
	}); err != nil {
		return s, fmt.Errorf("failed to create total style: %w", err)
	}
	if s.totalMoney, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Border:       totalBorder,
		CustomNumFmt: &moneyFormat,
	}); err != nil {
		return s, fmt.Errorf("failed to create total money style: %w", err)
	}
	return s, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
