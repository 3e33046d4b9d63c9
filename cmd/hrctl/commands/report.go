package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/export"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/report"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	reportEmployee string
	reportFrom     string
	reportTo       string

	exportFormat       string
	exportOutput       string
	exportObservations []string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Review and export the daily payroll report of an employee",
}

var reportShowCmd = &cobra.Command{
	Use:     "show",
	Short:   "Print the payroll report with advances applied",
	Example: `  hrctl report show -e emp-1 --from 2024-03-01 --to 2024-03-31`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := connect(cmd)
		if err != nil {
			return err
		}
		resp, err := desk.Reports.OpenPayrollReport(ctx, reportRequest())
		if err != nil {
			return err
		}
		defer closeReport(ctx)

		if err := renderReport(stdout, resp); err != nil {
			return err
		}
		if len(resp.UnmatchedAdvances) > 0 {
			warning("%d advances fall on days missing from the report and are not counted", len(resp.UnmatchedAdvances))
		}
		return nil
	},
}

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save observations and export the payroll report",
	Long: `Export the payroll report as PDF or Excel.

Every --observation is saved before the document is rendered. If any of them
cannot be saved the export is aborted and nothing is written.`,
	Example: `  hrctl report export -e emp-1 --from 2024-03-01 --to 2024-03-31 \
    --observation 2024-03-04="Medical leave" --format xlsx -o march.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := export.Format(strings.ToLower(exportFormat))
		if !format.IsValid() {
			return fmt.Errorf("%w: %s", export.ErrUnsupportedFormat, exportFormat)
		}
		edits, err := parseObservations(exportObservations)
		if err != nil {
			return err
		}

		ctx, err := connect(cmd)
		if err != nil {
			return err
		}
		if _, err := desk.Reports.OpenPayrollReport(ctx, reportRequest()); err != nil {
			return err
		}
		defer closeReport(ctx)

		for _, edit := range edits {
			if _, err := desk.Reports.EditObservation(ctx, edit); err != nil {
				return fmt.Errorf("observation for %s: %w", edit.Date, err)
			}
		}
		if len(edits) > 0 {
			step("Saving %d observations", len(edits))
		}

		doc, err := desk.Reports.ExportPayrollReport(ctx, format)
		if err != nil {
			return err
		}

		output := exportOutput
		if output == "" {
			output = doc.Filename
		}
		if err := os.WriteFile(output, doc.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		success("Exported %s (%d bytes)", output, len(doc.Content))
		if doc.ArchivePath != "" {
			step("Archived as %s", doc.ArchivePath)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{reportShowCmd, reportExportCmd} {
		c.Flags().StringVarP(&reportEmployee, "employee", "e", "", "Employee id (required)")
		c.Flags().StringVar(&reportFrom, "from", "", "First day, YYYY-MM-DD (required)")
		c.Flags().StringVar(&reportTo, "to", "", "Last day, YYYY-MM-DD (required)")
	}
	reportExportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(export.FormatPDF), "pdf or xlsx")
	reportExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: generated name)")
	reportExportCmd.Flags().StringArrayVar(&exportObservations, "observation", nil, "DATE=TEXT, repeatable")

	reportCmd.AddCommand(reportShowCmd, reportExportCmd)
	rootCmd.AddCommand(reportCmd)
}

// closeReport ends the report session opened by a command.
func closeReport(ctx context.Context) {
	if err := desk.Reports.ClosePayrollReport(ctx); err != nil {
		slog.Warn("Failed to close payroll report", "error", err)
	}
}

func reportRequest() report.PayrollReportRequest {
	return report.PayrollReportRequest{EmployeeID: reportEmployee, StartDate: reportFrom, EndDate: reportTo}
}

// parseObservations reads DATE=TEXT pairs. An empty TEXT clears the observation;
// a later pair for the same date replaces the earlier one.
func parseObservations(values []string) ([]report.ObservationEditRequest, error) {
	index := make(map[string]int, len(values))
	var edits []report.ObservationEditRequest
	for _, v := range values {
		date, text, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --observation %q: expected DATE=TEXT", v)
		}
		edit := report.ObservationEditRequest{Date: strings.TrimSpace(date), Observation: text}
		if err := edit.Validate(); err != nil {
			return nil, err
		}
		if i, seen := index[edit.Date]; seen {
			edits[i] = edit
			continue
		}
		index[edit.Date] = len(edits)
		edits = append(edits, edit)
	}
	return edits, nil
}

func renderReport(w io.Writer, resp report.PayrollReportResponse) error {
	name := resp.EmployeeName
	if name == "" {
		name = resp.EmployeeID
	}
	fmt.Fprintf(w, "%s  %s to %s\n", cyan.Sprint(name), resp.StartDate, resp.EndDate)

	table := tablewriter.NewWriter(w)
	table.Header("Date", "In", "Out", "Base", "Extras", "Deductions", "Net", "Advances", "Net after adv.", "Observation")
	for _, r := range resp.Rows {
		observation := r.Observation
		if r.Dirty && r.PendingObservation != nil {
			observation = *r.PendingObservation + " *"
		}
		if err := table.Append([]string{
			r.Date, r.EntryClock, r.ExitClock,
			r.BasePay.StringFixed(2), r.ExtrasPay.StringFixed(2), r.Deductions.StringFixed(2),
			r.NetPayForDay.StringFixed(2), r.TotalAdvancesForDay.StringFixed(2), r.NetAfterAdvances.StringFixed(2),
			observation,
		}); err != nil {
			return fmt.Errorf("failed to render report row %s: %w", r.Date, err)
		}
	}
	t := resp.Totals
	table.Footer(
		fmt.Sprintf("%d days", t.Days), "", "",
		t.BasePay.StringFixed(2), t.ExtrasPay.StringFixed(2), t.Deductions.StringFixed(2),
		t.NetPay.StringFixed(2), t.Advances.StringFixed(2), t.NetAfterAdvances.StringFixed(2),
		"",
	)
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
