package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

func newUploadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a document file for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, flags, args[0])
		},
	}
}

func runUpload(cmd *cobra.Command, flags *rootFlags, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	app, err := newApp(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	upload := &domain.FileUpload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Body:        f,
	}
	submitErr := app.Workflow.SubmitFile(cmd.Context(), upload)
	app.Close()
	return renderAnalysis(cmd, app, flags, submitErr)
}
