package document

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	pdfMargin       = 10.0
	pdfBottomMargin = pdfMargin + 5
	pdfRowHeight    = 5.5
	pdfLineHeight   = 4.0
	pdfCellPadding  = pdfRowHeight - pdfLineHeight
	pdfFontFamily   = "Helvetica"
)

// PDFGenerator renders a report as a landscape A4 table.
type PDFGenerator struct {
	layout   Layout
	now      func() time.Time
	compress bool
}

func NewPDFGenerator(layout Layout) *PDFGenerator {
	return &PDFGenerator{layout: layout, now: time.Now, compress: true}
}

func (g *PDFGenerator) Format() export.Format {
	return export.FormatPDF
}

func (g *PDFGenerator) Generate(s report.ReportSnapshot, w io.Writer) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	// Rows break pages themselves so a wrapped cell is never split by fpdf mid-row.
	pdf.SetAutoPageBreak(false, pdfBottomMargin)
	pdf.SetCompression(g.compress)
	pdf.SetCreationDate(g.now())
	pdf.SetTitle(g.layout.heading(s), true)
	pdf.AliasNbPages("")

	// Core fonts are cp1252; observations commonly carry accented text.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	cols := g.layout.Columns()
	widths := fitWidths(pdf, cols)

	header := func() {
		pdf.SetFont(pdfFontFamily, "B", 7)
		pdf.SetFillColor(48, 84, 150)
		pdf.SetTextColor(255, 255, 255)
		for i, c := range cols {
			pdf.CellFormat(widths[i], pdfRowHeight+1, tr(c.Label), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetHeaderFunc(func() {
		if g.layout.CompanyName != "" {
			pdf.SetFont(pdfFontFamily, "", 9)
			pdf.CellFormat(0, 5, tr(g.layout.CompanyName), "", 1, "L", false, 0, "")
		}
		pdf.SetFont(pdfFontFamily, "B", 12)
		pdf.CellFormat(0, 7, tr(g.layout.heading(s)), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		header()
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin - 2)
		pdf.SetFont(pdfFontFamily, "I", 7)
		generated := "Generated " + g.now().Format("2006-01-02 15:04")
		pdf.CellFormat(0, 4, generated, "", 0, "L", false, 0, "")
		pdf.SetX(pdfMargin)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont(pdfFontFamily, "", 7)
	pdf.SetFillColor(235, 240, 248)
	for n, r := range s.Rows() {
		cells := make([]pdfCell, len(cols))
		for i, c := range cols {
			text, align := g.cellText(rowValue(c.Key, r))
			cells[i] = pdfCell{text: tr(text), align: align}
		}
		drawRow(pdf, widths, cells, true, n%2 == 1)
	}

	totals := s.Totals()
	pdf.SetFont(pdfFontFamily, "B", 7)
	cells := make([]pdfCell, len(cols))
	for i, c := range cols {
		cells[i] = pdfCell{align: "L"}
		if v := totalValue(c.Key, totals); v != nil {
			text, align := g.cellText(v)
			cells[i] = pdfCell{text: tr(text), align: align}
		}
	}
	drawRow(pdf, widths, cells, false, false)

	if unmatched := s.UnmatchedAdvances(); len(unmatched) > 0 {
		pdf.Ln(3)
		ensureRoom(pdf, pdfLineHeight)
		pdf.SetFont(pdfFontFamily, "I", 7)
		note := fmt.Sprintf("%d advance(s) dated outside the report days were not applied.", len(unmatched))
		pdf.CellFormat(0, 4, note, "", 1, "L", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func (g *PDFGenerator) cellText(v interface{}) (string, string) {
	switch val := v.(type) {
	case decimal.Decimal:
		return g.layout.formatMoney(val), "R"
	case int:
		return strconv.Itoa(val), "R"
	case string:
		return val, "L"
	}
	return fmt.Sprint(v), "L"
}

// fitWidths scales the relative column widths to the printable page width.
func fitWidths(pdf *fpdf.Fpdf, cols []Column) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	available := pageWidth - left - right

	total := 0.0
	for _, c := range cols {
		total += c.width
	}
	widths := make([]float64, len(cols))
	for i, c := range cols {
		widths[i] = c.width / total * available
	}
	return widths
}

type pdfCell struct {
	text  string // in the font encoding
	align string
}

// drawRow draws one table row tall enough for the longest wrapped cell. A row that does not fit
// on the rest of the page continues on the next one, so no cell text is ever dropped.
func drawRow(pdf *fpdf.Fpdf, widths []float64, cells []pdfCell, boxed, fill bool) {
	lines := make([][]string, len(cells))
	total := 1
	for i, c := range cells {
		lines[i] = wrapText(pdf, c.text, widths[i]-2*pdf.GetCellMargin())
		total = max(total, len(lines[i]))
	}

	left, _, _, _ := pdf.GetMargins()
	_, pageHeight := pdf.GetPageSize()
	first := true
	for done := 0; done < total; {
		room := int((pageHeight - pdfBottomMargin - pdf.GetY() - pdfCellPadding) / pdfLineHeight)
		if room < 1 {
			pdf.AddPage()
			continue
		}
		n := min(room, total-done)
		height := float64(n)*pdfLineHeight + pdfCellPadding
		x, y := left, pdf.GetY()

		for i, c := range cells {
			switch {
			case boxed && fill:
				pdf.Rect(x, y, widths[i], height, "FD")
			case boxed:
				pdf.Rect(x, y, widths[i], height, "D")
			case first:
				pdf.Line(x, y, x+widths[i], y)
			}
			for k := done; k < done+n && k < len(lines[i]); k++ {
				pdf.SetXY(x, y+pdfCellPadding/2+float64(k-done)*pdfLineHeight)
				pdf.CellFormat(widths[i], pdfLineHeight, lines[i][k], "", 0, c.align, false, 0, "")
			}
			x += widths[i]
		}

		pdf.SetXY(left, y+height)
		done += n
		first = false
	}
}

// ensureRoom starts a new page when height does not fit above the bottom margin.
func ensureRoom(pdf *fpdf.Fpdf, height float64) {
	_, pageHeight := pdf.GetPageSize()
	if pdf.GetY()+height > pageHeight-pdfBottomMargin {
		pdf.AddPage()
	}
}

// wrapText splits s into lines no wider than width at the current font. Lines break at spaces;
// a word wider than a whole line is broken between characters. s is already in the single-byte
// font encoding, so byte offsets are character offsets.
func wrapText(pdf *fpdf.Fpdf, s string, width float64) []string {
	fits := func(t string) bool { return pdf.GetStringWidth(t) <= width }

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for i, word := range strings.Split(para, " ") {
			if i > 0 {
				if candidate := line + " " + word; fits(candidate) {
					line = candidate
					continue
				}
				lines = append(lines, line)
			}
			for len(word) > 1 && !fits(word) {
				n := len(word) - 1
				for n > 1 && !fits(word[:n]) {
					n--
				}
				lines = append(lines, word[:n])
				word = word[n:]
			}
			line = word
		}
		lines = append(lines, line)
	}
	return lines
}
