package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/domain/punch"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type jornadaFlags struct {
	employee string
	date     string
	entry    string
	lunchOut string
	lunchIn  string
	exit     string
}

func (f *jornadaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.employee, "employee", "e", "", "Employee id (required)")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "Nominal date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&f.entry, "entry", "", "Entry time, HH:MM")
	cmd.Flags().StringVar(&f.lunchOut, "lunch-out", "", "Lunch out time, HH:MM")
	cmd.Flags().StringVar(&f.lunchIn, "lunch-in", "", "Lunch in time, HH:MM")
	cmd.Flags().StringVar(&f.exit, "exit", "", "Exit time, HH:MM")
}

// request maps the flags to a jornada request; empty times are left out.
func (f *jornadaFlags) request() punch.JornadaRequest {
	opt := func(s string) *string {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return &s
	}
	return punch.JornadaRequest{
		EmployeeID: f.employee,
		Date:       f.date,
		Entry:      opt(f.entry),
		LunchOut:   opt(f.lunchOut),
		LunchIn:    opt(f.lunchIn),
		Exit:       opt(f.exit),
	}
}

var (
	previewFlags jornadaFlags
	submitFlags  jornadaFlags
	submitYes    bool

	correctEmployee string
	correctKind     string
	correctAt       string
)

var punchCmd = &cobra.Command{
	Use:   "punch",
	Short: "Enter, preview and correct clock punches",
}

var punchPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the punches a manual jornada would create",
	Long: `Show the punches a manual jornada would create, without sending anything.

Times earlier than the one before them roll over to the next day, so a shift
from 22:00 to 06:00 ends on the day after --date.`,
	Example: `  hrctl punch preview -e emp-1 -d 2024-03-04 --entry 22:00 --exit 06:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := connect(cmd)
		if err != nil {
			return err
		}
		preview, err := desk.Punches.PreviewJornada(ctx, previewFlags.request())
		if err != nil {
			return err
		}
		return renderEvents(stdout, preview.Events)
	},
}

var punchSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a manual jornada to the HR API",
	Long: `Submit a manual jornada. The punches are previewed and sent one by one in
shift order after confirmation; the first rejected punch stops the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := connect(cmd)
		if err != nil {
			return err
		}
		return submitJornada(ctx, submitFlags.request(), submitYes, os.Stdin)
	},
}

var punchCorrectCmd = &cobra.Command{
	Use:     "correct <punch-id>",
	Short:   "Correct the time or kind of an existing punch",
	Example: `  hrctl punch correct 0190f5c2-7a4e-7cc1-9d2b-5f8f0b6e4a10 -e emp-1 --kind EXIT --at 2024-03-05T06:10`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := connect(cmd)
		if err != nil {
			return err
		}
		ack, err := desk.Punches.CorrectPunch(ctx, punch.CorrectPunchRequest{
			PunchID:       args[0],
			EmployeeID:    correctEmployee,
			Kind:          punch.Kind(strings.ToUpper(correctKind)),
			LocalDateTime: correctAt,
		})
		if err != nil {
			return err
		}
		success("Punch %s is now %s at %s", ack.PunchID, ack.Kind, ack.LocalDateTime)
		return nil
	},
}

var punchImportCmd = &cobra.Command{
	Use:   "import <file.xlsx|file.xls>",
	Short: "Submit every row of a spreadsheet as a manual jornada",
	Long: `Submit every row of a single-sheet spreadsheet as a manual jornada.

Required columns: employee_id, date, entry. Optional: lunch_out, lunch_in, exit.
A failing row is reported and the next row is still processed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := connect(cmd)
		if err != nil {
			return err
		}

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer file.Close()

		result, err := desk.Punches.ImportJornadas(ctx, file, filepath.Base(args[0]))
		if err != nil {
			return err
		}
		if err := renderImport(stdout, result); err != nil {
			return err
		}
		if result.Failed > 0 {
			return fmt.Errorf("%d of %d rows failed", result.Failed, result.Failed+result.Succeeded)
		}
		success("%d rows imported", result.Succeeded)
		return nil
	},
}

func init() {
	previewFlags.register(punchPreviewCmd)
	submitFlags.register(punchSubmitCmd)
	punchSubmitCmd.Flags().BoolVarP(&submitYes, "yes", "y", false, "Submit without asking for confirmation")

	punchCorrectCmd.Flags().StringVarP(&correctEmployee, "employee", "e", "", "Employee id (required)")
	punchCorrectCmd.Flags().StringVar(&correctKind, "kind", "", "ENTRY, LUNCH_OUT, LUNCH_IN or EXIT (required)")
	punchCorrectCmd.Flags().StringVar(&correctAt, "at", "", "Local date and time, YYYY-MM-DDTHH:MM (required)")

	punchCmd.AddCommand(punchPreviewCmd, punchSubmitCmd, punchCorrectCmd, punchImportCmd)
	rootCmd.AddCommand(punchCmd)
}

// submitJornada previews the request, asks for confirmation on in unless yes is set, and
// submits through the confirmation manager like the API does.
func submitJornada(ctx context.Context, req punch.JornadaRequest, yes bool, in io.Reader) error {
	preview, err := desk.Punches.PreviewJornada(ctx, req)
	if err != nil {
		return err
	}
	if err := renderEvents(stdout, preview.Events); err != nil {
		return err
	}

	description := fmt.Sprintf("Submit %d punches for %s on %s", len(preview.Events), preview.EmployeeID, preview.Date)
	pending, err := desk.Confirmations.Request(operator, description, preview, func(ctx context.Context) (interface{}, error) {
		return desk.Punches.SubmitJornada(ctx, req)
	})
	if err != nil {
		return err
	}

	if !yes && !ask(in, description+"?") {
		warning("Nothing submitted")
		return desk.Confirmations.Cancel(operator, pending.ID)
	}

	result, err := desk.Confirmations.Confirm(ctx, operator, pending.ID)
	resp, _ := result.(punch.JornadaSubmitResponse)
	for _, ack := range resp.Submitted {
		step("%s accepted as %s", ack.Kind, ack.PunchID)
	}
	if err != nil {
		if len(resp.Pending) > 0 {
			warning("Not sent: %s", joinKinds(resp.Pending))
		}
		return err
	}
	success("%d punches submitted", len(resp.Submitted))
	return nil
}

func ask(in io.Reader, question string) bool {
	fmt.Fprintf(stdout, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func joinKinds(kinds []punch.Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func renderEvents(w io.Writer, events []punch.PunchEventResponse) error {
	table := tablewriter.NewWriter(w)
	table.Header("Kind", "Local time", "Day")
	for _, e := range events {
		day := "same day"
		if e.DayOffset > 0 {
			day = fmt.Sprintf("+%d", e.DayOffset)
		}
		if err := table.Append([]string{string(e.Kind), e.LocalDateTime, day}); err != nil {
			return fmt.Errorf("failed to render punches: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render punches: %w", err)
	}
	return nil
}

func renderImport(w io.Writer, result punch.ImportResponse) error {
	table := tablewriter.NewWriter(w)
	table.Header("Row", "Employee", "Date", "Punches", "Error")
	for _, r := range result.Rows {
		row := []string{fmt.Sprint(r.Row), r.EmployeeID, r.Date, fmt.Sprint(r.Submitted), r.Error}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render import row %d: %w", r.Row, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render import results: %w", err)
	}
	return nil
}
