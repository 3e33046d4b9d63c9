package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/pkg/validator"
	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func success(format string, a ...any) {
	green.Fprintf(stdout, "✓ %s\n", fmt.Sprintf(format, a...))
}

func warning(format string, a ...any) {
	yellow.Fprintf(stdout, "! %s\n", fmt.Sprintf(format, a...))
}

func step(format string, a ...any) {
	cyan.Fprintf(stdout, "→ %s\n", fmt.Sprintf(format, a...))
}

// printError prints err to stderr, listing field errors one per line.
func printError(err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		red.Fprintln(stderr, "Invalid input")
		for _, v := range verrs {
			fmt.Fprintf(stderr, "  %s: %s\n", v.Field, v.Message)
		}
		return
	}
	red.Fprintln(stderr, capitalize(err.Error()))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
