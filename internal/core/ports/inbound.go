package ports

import (
	"context"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

// DocumentWorkflow is the inbound contract for submitting documents and
// reading the current analysis.
type DocumentWorkflow interface {
	SubmitFile(ctx context.Context, file *domain.FileUpload) error
	SubmitPastedText(ctx context.Context, text string) error
	RefreshGlobalStats(ctx context.Context)
	Reset() error
	Snapshot() domain.Snapshot
	Wait()
}
