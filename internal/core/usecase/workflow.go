package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/core/ports"
)

const (
	OutcomeSuccess         = "success"
	OutcomeSubmissionError = "submission_error"
	OutcomeClauseError     = "clause_fetch_error"
	OutcomeStale           = "stale"

	RejectValidation = "validation"
	RejectBusy       = "busy"
)

// WorkflowController owns the current document and everything derived from
// it. All mutation happens under mu; gateway calls run without the lock.
type WorkflowController struct {
	gateway  ports.AnalysisGateway
	observer ports.WorkflowObserver
	logger   *slog.Logger

	mu         sync.Mutex
	busy       bool
	busyKind   domain.SubmissionKind
	generation uint64
	state      domain.WorkflowState
	documentID domain.ID
	filename   string
	clauses    []domain.Clause
	clausesSet bool
	reported   *domain.DocumentStats
	global     *domain.GlobalStats
	errMsg     string
	status     string

	background sync.WaitGroup
}

func NewWorkflowController(
	gateway ports.AnalysisGateway,
	observer ports.WorkflowObserver,
	logger *slog.Logger,
) *WorkflowController {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowController{
		gateway:  gateway,
		observer: observer,
		logger:   logger,
		state:    domain.StateIdle,
	}
}

func (c *WorkflowController) SubmitFile(ctx context.Context, file *domain.FileUpload) error {
	validate := func() string {
		if file == nil || file.Body == nil {
			return domain.MsgChooseFile
		}
		return ""
	}
	gen, err := c.begin(domain.KindUpload, validate, "Uploading and analyzing document...")
	if err != nil {
		return err
	}

	start := time.Now()
	receipt, err := c.gateway.Upload(ctx, *file)
	if err == nil && receipt.Filename == "" {
		receipt.Filename = file.Filename
	}
	return c.finish(ctx, gen, domain.KindUpload, start, receipt, err)
}

func (c *WorkflowController) SubmitPastedText(ctx context.Context, text string) error {
	validate := func() string {
		if strings.TrimSpace(text) == "" {
			return domain.MsgPasteSomething
		}
		if utf8.RuneCountInString(text) < domain.MinPasteLength {
			return domain.MsgTextTooShort
		}
		return ""
	}
	gen, err := c.begin(domain.KindPaste, validate, "Analyzing pasted text...")
	if err != nil {
		return err
	}

	start := time.Now()
	receipt, err := c.gateway.PasteText(ctx, text)
	return c.finish(ctx, gen, domain.KindPaste, start, receipt, err)
}

// RefreshGlobalStats fetches the service-wide counters. Failures are
// swallowed and leave the previous value in place.
func (c *WorkflowController) RefreshGlobalStats(ctx context.Context) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	c.refreshGlobalStats(ctx, gen)
}

// RefreshGlobalStatsInBackground starts a best-effort refresh bound to ctx
// without blocking the caller. Wait joins it.
func (c *WorkflowController) RefreshGlobalStatsInBackground(ctx context.Context) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.refreshGlobalStats(ctx, gen)
	}()
}

// Reset discards the current document. It is refused while a submission is
// in flight.
func (c *WorkflowController) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return domain.WrapError(domain.ErrBusy, "reset", fmt.Errorf("%s in progress", c.busyKind))
	}
	c.clearLocked()
	c.generation++
	c.state = domain.StateIdle
	return nil
}

func (c *WorkflowController) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := domain.Snapshot{
		State:      c.state,
		Generation: c.generation,
		DocumentID: c.documentID,
		Filename:   c.filename,
		Clauses:    append([]domain.Clause(nil), c.clauses...),
		ClausesSet: c.clausesSet,
		Error:      c.errMsg,
		Status:     c.status,
	}
	if snap.Clauses == nil {
		snap.Clauses = []domain.Clause{}
	}
	if c.busy {
		snap.BusyKind = c.busyKind
	}
	if c.reported != nil {
		reported := *c.reported
		snap.Reported = &reported
	}
	if c.global != nil {
		global := *c.global
		snap.GlobalStats = &global
	}
	return snap
}

// Wait blocks until background global-stats refreshes have finished.
func (c *WorkflowController) Wait() {
	c.background.Wait()
}

// begin resets the workflow, validates input and claims the single
// submission slot, all under one critical section.
func (c *WorkflowController) begin(kind domain.SubmissionKind, validate func() string, busyStatus string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		c.observer.SubmissionRejected(kind, RejectBusy)
		return 0, domain.WrapError(domain.ErrBusy, string(kind), fmt.Errorf("%s in progress", c.busyKind))
	}

	c.clearLocked()
	c.generation++

	if msg := validate(); msg != "" {
		c.errMsg = msg
		c.state = domain.StateErrored
		c.observer.SubmissionRejected(kind, RejectValidation)
		return 0, domain.NewValidationError(msg)
	}

	c.busy = true
	c.busyKind = kind
	c.state = domain.StateBusy
	c.status = busyStatus
	c.observer.SubmissionStarted(kind)
	c.logger.Info("submission_started", "kind", kind, "generation", c.generation)
	return c.generation, nil
}

func (c *WorkflowController) finish(
	ctx context.Context,
	gen uint64,
	kind domain.SubmissionKind,
	start time.Time,
	receipt domain.SubmissionReceipt,
	submitErr error,
) error {
	if err := c.applyReceipt(gen, kind, receipt, submitErr); err != nil {
		c.observer.SubmissionFinished(kind, outcomeOf(err), time.Since(start))
		return err
	}

	clauses, fetchErr := c.gateway.FetchClauses(ctx, receipt.DocumentID)
	if fetchErr == nil {
		fetchErr = domain.ValidateClauses(clauses)
	}
	err := c.applyClauses(gen, clauses, fetchErr)
	c.observer.SubmissionFinished(kind, outcomeOf(err), time.Since(start))
	if domain.IsKind(err, domain.ErrStaleRequest) {
		return err
	}

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		c.refreshGlobalStats(context.WithoutCancel(ctx), gen)
	}()
	return err
}

func (c *WorkflowController) applyReceipt(gen uint64, kind domain.SubmissionKind, receipt domain.SubmissionReceipt, submitErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.discardLocked(string(kind))
		return domain.WrapError(domain.ErrStaleRequest, string(kind), fmt.Errorf("generation %d superseded by %d", gen, c.generation))
	}

	if submitErr == nil && receipt.DocumentID.IsZero() {
		submitErr = domain.WrapError(domain.ErrContract, string(kind), errors.New("response has no documentId"))
	}
	if submitErr != nil {
		c.release()
		c.errMsg = submissionMessage(kind, submitErr)
		c.status = ""
		c.state = domain.StateErrored
		c.logger.Warn("submission_failed", "kind", kind, "generation", gen, "error", submitErr)
		return domain.WrapError(domain.ErrSubmission, string(kind), submitErr)
	}

	stats := receipt.Stats()
	c.documentID = receipt.DocumentID
	c.filename = receipt.Filename
	c.reported = &stats
	c.errMsg = ""
	c.status = completionMessage(kind, receipt)
	return nil
}

func (c *WorkflowController) applyClauses(gen uint64, clauses []domain.Clause, fetchErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.discardLocked("fetch_clauses")
		return domain.WrapError(domain.ErrStaleRequest, "fetch clauses", fmt.Errorf("generation %d superseded by %d", gen, c.generation))
	}
	c.release()

	if fetchErr != nil {
		// Document identity and reported counts stay as set by the receipt.
		c.errMsg = "Failed to load clauses: " + failureReason(fetchErr)
		c.status = ""
		c.state = domain.StateErrored
		c.logger.Warn("clause_fetch_failed", "document_id", c.documentID, "generation", gen, "error", fetchErr)
		return domain.WrapError(domain.ErrClauseFetch, "fetch clauses", fetchErr)
	}

	c.clauses = append([]domain.Clause(nil), clauses...)
	c.clausesSet = true
	c.state = domain.StateReady
	c.logger.Info("submission_completed",
		"document_id", c.documentID,
		"generation", gen,
		"clauses", len(c.clauses),
		"high_risk", domain.ComputeDocumentStats(c.clauses).HighRiskClauses,
	)
	return nil
}

func (c *WorkflowController) refreshGlobalStats(ctx context.Context, gen uint64) {
	stats, err := c.gateway.FetchGlobalStats(ctx)
	if err != nil {
		c.logger.Debug("global_stats_refresh_failed", "error", domain.WrapError(domain.ErrStatsFetch, "fetch global stats", err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.discardLocked("global_stats")
		return
	}
	c.global = &stats
}

func (c *WorkflowController) clearLocked() {
	c.documentID = ""
	c.filename = ""
	c.clauses = nil
	c.clausesSet = false
	c.reported = nil
	c.errMsg = ""
	c.status = ""
}

func (c *WorkflowController) release() {
	c.busy = false
	c.busyKind = ""
}

func (c *WorkflowController) discardLocked(operation string) {
	c.observer.StaleResponseDiscarded(operation)
	c.logger.Debug("stale_response_discarded", "operation", operation, "generation", c.generation)
}

func completionMessage(kind domain.SubmissionKind, receipt domain.SubmissionReceipt) string {
	if kind == domain.KindUpload {
		return fmt.Sprintf("Processing complete! Found %d clauses in %s", receipt.ClausesFound, receipt.Filename)
	}
	return fmt.Sprintf("Processing complete! Found %d clauses.", receipt.ClausesFound)
}

func submissionMessage(kind domain.SubmissionKind, err error) string {
	fallback := "Processing failed"
	if kind == domain.KindUpload {
		fallback = "Upload failed"
	}

	var failure domain.ServiceFailure
	if errors.As(err, &failure) {
		if msg := strings.TrimSpace(failure.ServiceMessage()); msg != "" {
			return msg
		}
		return fallback
	}
	return fallback + ": " + err.Error()
}

func failureReason(err error) string {
	var failure domain.ServiceFailure
	if errors.As(err, &failure) {
		if msg := strings.TrimSpace(failure.ServiceMessage()); msg != "" {
			return msg
		}
		if text := http.StatusText(failure.HTTPStatus()); text != "" {
			return text
		}
	}
	return err.Error()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case domain.IsKind(err, domain.ErrStaleRequest):
		return OutcomeStale
	case domain.IsKind(err, domain.ErrClauseFetch):
		return OutcomeClauseError
	default:
		return OutcomeSubmissionError
	}
}

type nopObserver struct{}

func (nopObserver) SubmissionRejected(domain.SubmissionKind, string)                {}
func (nopObserver) SubmissionStarted(domain.SubmissionKind)                         {}
func (nopObserver) SubmissionFinished(domain.SubmissionKind, string, time.Duration) {}
func (nopObserver) StaleResponseDiscarded(string)                                   {}
