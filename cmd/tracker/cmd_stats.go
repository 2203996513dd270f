package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/consent-tracker/internal/infrastructure/report"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show service-wide analysis statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, flags)
		},
	}
}

func runStats(cmd *cobra.Command, flags *rootFlags) error {
	app, err := newApp(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	app.Workflow.RefreshGlobalStats(cmd.Context())
	snap := app.Workflow.Snapshot()
	if snap.GlobalStats == nil {
		return errors.New("global statistics are unavailable")
	}

	out := cmd.OutOrStdout()
	if flags.parsed == report.FormatJSON {
		return report.WriteJSON(out, snap)
	}
	_, err = fmt.Fprintln(out, report.StatsTable(nil, snap.GlobalStats))
	return err
}
