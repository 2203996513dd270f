package main

import (
	"os"

	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/consent-tracker/internal/adapters/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis tools to an MCP client over stdio",
		Long: `Starts an MCP server on stdin/stdout exposing analyze_text, analyze_file,
current_analysis and global_stats. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), os.Stderr)
			if err != nil {
				return err
			}
			defer app.Close()
			app.WarmUp(cmd.Context())

			app.Logger.Info("mcp_server_starting", "analysis_url", app.Gateway.BaseURL())
			return mcpadapter.New(app.Workflow, version).ServeStdio()
		},
	}
}
