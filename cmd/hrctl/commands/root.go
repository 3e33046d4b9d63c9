package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/app"
	"github.com/cmlabs-hris/hris-payroll-desk/internal/config"
	"github.com/spf13/cobra"
)

var (
	operator string
	verbose  bool

	// desk is built by connect for commands that talk to the HR backend.
	desk *app.App
)

var rootCmd = &cobra.Command{
	Use:   "hrctl",
	Short: "hrctl - manual punches and payroll reports from the terminal",
	Long: `hrctl enters manual jornadas, corrects punches and reviews the daily payroll
report of an employee. Observation edits are saved before any export, so an
exported document never shows stale observations.

Configuration is read from .env and the environment, like the API server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	if desk != nil {
		desk.Close()
	}
	return err
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	defaultOperator := os.Getenv("USER")
	if defaultOperator == "" {
		defaultOperator = "hrctl"
	}
	rootCmd.PersistentFlags().StringVar(&operator, "operator", defaultOperator, "Operator id recorded as the session owner")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

// connect loads the configuration and builds the services once per invocation.
func connect(cmd *cobra.Command) (context.Context, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if desk == nil {
		desk, err = app.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	// Services read the user from JWT claims, as they do behind the HTTP verifier.
	return desk.JWT.ContextWithUser(ctx, operator)
}
