package punch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/spreadsheet"
)

var requiredImportColumns = []string{"employee_id", "date", "entry"}

// ImportJornadas implements punch.PunchService.
// Each row is inferred and submitted on its own; a bad row is reported and the import moves on.
func (s *PunchServiceImpl) ImportJornadas(ctx context.Context, file io.Reader, filename string) (punch.ImportResponse, error) {
	rows, err := spreadsheet.ReadRows(file, filename)
	if err != nil {
		return punch.ImportResponse{}, fmt.Errorf("%w: %w", punch.ErrImportFileInvalid, err)
	}

	idx := spreadsheet.HeaderIndex(rows[0])
	var missing []string
	for _, col := range requiredImportColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return punch.ImportResponse{}, fmt.Errorf("%w: %s", punch.ErrImportHeader, strings.Join(missing, ", "))
	}

	column := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok {
			return ""
		}
		return spreadsheet.Cell(row, i)
	}

	resp := punch.ImportResponse{Rows: make([]punch.ImportRowResult, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		result := punch.ImportRowResult{
			Row:        i + 2,
			EmployeeID: column(row, "employee_id"),
		}

		req, err := importRequest(result.EmployeeID, column(row, "date"), map[string]string{
			"entry":     column(row, "entry"),
			"lunch_out": column(row, "lunch_out"),
			"lunch_in":  column(row, "lunch_in"),
			"exit":      column(row, "exit"),
		})
		result.Date = req.Date
		if err == nil {
			var submitted punch.JornadaSubmitResponse
			submitted, err = s.SubmitJornada(ctx, req)
			result.Submitted = len(submitted.Submitted)
		}

		if err != nil {
			result.Error = err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Rows = append(resp.Rows, result)
	}

	slog.Info("Jornada import finished", "file", filename, "succeeded", resp.Succeeded, "failed", resp.Failed)
	return resp, nil
}

func importRequest(employeeID, rawDate string, clocks map[string]string) (punch.JornadaRequest, error) {
	date, ok := spreadsheet.NormalizeDate(rawDate)
	if !ok {
		return punch.JornadaRequest{EmployeeID: employeeID, Date: rawDate}, fmt.Errorf("invalid date %q", rawDate)
	}

	req := punch.JornadaRequest{EmployeeID: employeeID, Date: date}
	targets := map[string]**string{
		"entry":     &req.Entry,
		"lunch_out": &req.LunchOut,
		"lunch_in":  &req.LunchIn,
		"exit":      &req.Exit,
	}
	for name, raw := range clocks {
		if raw == "" {
			continue
		}
		clock, ok := spreadsheet.NormalizeClock(raw)
		if !ok {
			return req, fmt.Errorf("%w: %s %q", punch.ErrInvalidClockTime, name, raw)
		}
		*targets[name] = &clock
	}
	return req, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
