package ports

import (
	"context"
	"time"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

// AnalysisGateway is the contract of the external analysis service.
type AnalysisGateway interface {
	Upload(ctx context.Context, file domain.FileUpload) (domain.SubmissionReceipt, error)
	PasteText(ctx context.Context, content string) (domain.SubmissionReceipt, error)
	FetchClauses(ctx context.Context, documentID domain.ID) ([]domain.Clause, error)
	FetchGlobalStats(ctx context.Context) (domain.GlobalStats, error)
}

// WorkflowObserver receives workflow lifecycle events for metrics.
type WorkflowObserver interface {
	SubmissionRejected(kind domain.SubmissionKind, reason string)
	SubmissionStarted(kind domain.SubmissionKind)
	SubmissionFinished(kind domain.SubmissionKind, outcome string, duration time.Duration)
	StaleResponseDiscarded(operation string)
}
