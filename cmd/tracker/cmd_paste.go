package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/consent-tracker/internal/infrastructure/extractor"
)

func newPasteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "paste [FILE|-]",
		Short: "Analyze plain text read from a file or stdin",
		Long: `Reads the document text from FILE, or from stdin when FILE is "-" or
omitted, and submits it as pasted text. PDF files are converted to text
locally first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := "-"
			if len(args) == 1 {
				source = args[0]
			}
			return runPaste(cmd, flags, source)
		},
	}
}

func runPaste(cmd *cobra.Command, flags *rootFlags, source string) error {
	text, err := readText(cmd.Context(), cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	app, err := newApp(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	submitErr := app.Workflow.SubmitPastedText(cmd.Context(), text)
	app.Close()
	return renderAnalysis(cmd, app, flags, submitErr)
}

func readText(ctx context.Context, stdin io.Reader, source string) (string, error) {
	if source == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}

	f, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("open text: %w", err)
	}
	defer f.Close()
	return extractor.New().Extract(ctx, filepath.Base(source), f)
}
