package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoWorksheet        = errors.New("no worksheet found")
	ErrMultipleWorksheets = errors.New("multiple worksheets found; please upload a file with a single sheet")
	ErrEmptyWorksheet     = errors.New("worksheet is empty")
	ErrUnsupportedFormat  = errors.New("unsupported spreadsheet format; use .xls or .xlsx")
)

const maxXLSRows = 100000

// ReadRows returns every row of the first sheet as raw cell strings.
// Legacy .xls goes through extrame/xls, everything else through excelize.
func ReadRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("failed to open xls workbook: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, ErrNoWorksheet
		}
		if workbook.NumSheets() > 1 {
			return nil, ErrMultipleWorksheets
		}
		rows := workbook.ReadAllCells(maxXLSRows)
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open xlsx workbook: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, ErrNoWorksheet
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
		}
		if len(rows) == 0 {
			return nil, ErrEmptyWorksheet
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// NormalizeHeader lowercases a header cell and maps spaces and dashes to underscores.
func NormalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "-", "_")
}

// HeaderIndex maps normalized header names to their column index.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := NormalizeHeader(h)
		if name == "" {
			continue
		}
		if _, exists := idx[name]; !exists {
			idx[name] = i
		}
	}
	return idx
}

func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// NormalizeDate converts a date cell to YYYY-MM-DD. Excel serial dates are accepted.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= 1 && serial <= 2958465 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed.Format("2006-01-02"), true
			}
		}
		return "", false
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm"}

// NormalizeClock converts a time cell to HH:MM. Excel stores times as a fraction of a day.
func NormalizeClock(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if fraction, err := strconv.ParseFloat(value, 64); err == nil && !strings.Contains(value, ":") {
		if fraction < 0 || fraction >= 1 {
			return "", false
		}
		minutes := int(math.Round(fraction * 24 * 60))
		if minutes == 24*60 {
			minutes = 0
		}
		return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), true
	}

	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("15:04"), true
		}
	}
	return "", false
}
