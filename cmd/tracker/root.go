package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kirillkom/consent-tracker/internal/bootstrap"
	"github.com/kirillkom/consent-tracker/internal/config"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/report"
	"github.com/kirillkom/consent-tracker/internal/observability/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	format string
	xlsx   string
	width  int

	parsed report.Format
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "tracker",
		Short: "Risk analysis for terms and conditions documents",
		Long: "tracker sends a document to the analysis service, loads the clauses it\n" +
			"extracted and shows them ranked by risk together with document and\n" +
			"service-wide statistics.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		format, err := report.ParseFormat(flags.format)
		if err != nil {
			return err
		}
		flags.parsed = format
		return nil
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.format, "format", string(report.FormatText), "Output format: text, table, markdown or json")
	pf.StringVar(&flags.xlsx, "xlsx", "", "Also write the analysis to this .xlsx workbook")
	pf.IntVar(&flags.width, "width", 100, "Wrap width for text and markdown output")

	root.AddCommand(
		newUploadCmd(flags),
		newPasteCmd(flags),
		newStatsCmd(flags),
		newServeCmd(),
		newMCPCmd(),
	)
	return root
}

// newApp loads configuration and wires the workflow. CLI commands log to
// stderr so stdout carries only the report.
func newApp(ctx context.Context, logOut io.Writer) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := logging.NewWithWriter(logOut, bootstrap.ServiceName, cfg.LogLevel, cfg.LogFormat)
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return app, nil
}

// renderAnalysis prints the current snapshot and optionally exports it.
// submitErr is returned unchanged after rendering so the snapshot's error
// message reaches the user first.
func renderAnalysis(cmd *cobra.Command, app *bootstrap.App, flags *rootFlags, submitErr error) error {
	snap := app.Workflow.Snapshot()
	if err := report.Render(cmd.OutOrStdout(), snap, flags.parsed, flags.width); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if flags.xlsx != "" && snap.ClausesSet {
		if err := writeWorkbook(flags.xlsx, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", flags.xlsx)
	}
	return submitErr
}
