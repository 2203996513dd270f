package bootstrap

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/consent-tracker/internal/config"
	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func fakeAnalysisService(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/documents/paste":
			var req struct {
				Content string `json:"content"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if !strings.Contains(req.Content, "terms") {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"Not a terms document"}`))
				return
			}
			_, _ = w.Write([]byte(`{"documentId":5,"clausesFound":2,"highRiskClauses":1}`))
		case "/api/documents/5/clauses":
			_, _ = w.Write([]byte(`[{"id":1,"category":"Data Sharing","clauseText":"a","riskScore":0.9,"suggestion":"b"},{"id":2,"category":"Cookies","clauseText":"c","riskScore":0.2,"suggestion":"d"}]`))
		case "/api/documents/stats":
			_, _ = w.Write([]byte(`{"totalDocuments":3,"totalClauses":17,"highRiskClauses":4}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestAppRunsPasteWorkflowAgainstService(t *testing.T) {
	server := fakeAnalysisService(t)
	defer server.Close()

	cfg := config.Default()
	cfg.AnalysisURL = server.URL
	cfg.StrictContract = true
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := New(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	text := strings.Repeat("These terms govern your use. ", 3)
	if err := app.Workflow.SubmitPastedText(context.Background(), text); err != nil {
		t.Fatalf("SubmitPastedText() error = %v", err)
	}
	app.Close()

	snap := app.Workflow.Snapshot()
	if snap.DocumentID != "5" || len(snap.Clauses) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if got := snap.DocumentStats(); got == nil || got.HighRiskClauses != 1 {
		t.Fatalf("unexpected document stats: %+v", got)
	}
	if snap.GlobalStats == nil || snap.GlobalStats.TotalDocuments != 3 {
		t.Fatalf("expected global stats after submission, got %+v", snap.GlobalStats)
	}
	if got, err := testutil.GatherAndCount(app.Registry, "tracker_gateway_calls_total"); err != nil || got != 3 {
		t.Fatalf("expected 3 gateway series, got %d", got)
	}
}

func TestAppSurfacesServiceErrorMessage(t *testing.T) {
	server := fakeAnalysisService(t)
	defer server.Close()

	cfg := config.Default()
	cfg.AnalysisURL = server.URL
	app, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	err = app.Workflow.SubmitPastedText(context.Background(), strings.Repeat("lorem ipsum ", 6))
	if !domain.IsKind(err, domain.ErrSubmission) {
		t.Fatalf("expected submission error, got %v", err)
	}
	if got := app.Workflow.Snapshot().Error; got != "Not a terms document" {
		t.Fatalf("unexpected error message %q", got)
	}
}

func TestWarmUpLoadsGlobalStats(t *testing.T) {
	server := fakeAnalysisService(t)
	defer server.Close()

	cfg := config.Default()
	cfg.AnalysisURL = server.URL
	app, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	app.WarmUp(context.Background())
	app.Close()

	snap := app.Workflow.Snapshot()
	if snap.GlobalStats == nil || snap.GlobalStats.TotalClauses != 17 {
		t.Fatalf("expected global stats after warm-up, got %+v", snap.GlobalStats)
	}
	if snap.HasDocument() || snap.State != domain.StateIdle {
		t.Fatalf("warm-up must not touch the document: %+v", snap)
	}
}
