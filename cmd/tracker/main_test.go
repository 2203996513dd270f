package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/report"
)

func analysisService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/documents/upload":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			_, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"documentId":      "doc-9",
				"filename":        header.Filename,
				"clausesFound":    2,
				"highRiskClauses": 1,
			})
		case "/api/documents/paste":
			_, _ = w.Write([]byte(`{"documentId":5,"clausesFound":2,"highRiskClauses":1}`))
		case "/api/documents/5/clauses", "/api/documents/doc-9/clauses":
			_, _ = w.Write([]byte(`[{"id":1,"category":"Data Sharing","clauseText":"We share data.","riskScore":0.91,"suggestion":"Opt out."},{"id":2,"category":"Cookies","clauseText":"We use cookies.","riskScore":0.3,"suggestion":"Clear them."}]`))
		case "/api/documents/stats":
			_, _ = w.Write([]byte(`{"totalDocuments":3,"totalClauses":17,"highRiskClauses":4}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	srv := analysisService(t)
	t.Chdir(t.TempDir())
	t.Setenv("TRACKER_CONFIG", "")
	t.Setenv("ANALYSIS_API_URL", srv.URL)
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeView(t *testing.T, raw string) report.View {
	t.Helper()
	var view report.View
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		t.Fatalf("decode view: %v\n%s", err, raw)
	}
	return view
}

func TestPasteFromStdinRendersJSONAndWorkbook(t *testing.T) {
	workbook := filepath.Join(t.TempDir(), "analysis.xlsx")
	text := strings.Repeat("These terms and conditions apply. ", 3)

	out, err := runCLI(t, text, "paste", "--format", "json", "--xlsx", workbook)
	if err != nil {
		t.Fatalf("paste error = %v", err)
	}

	view := decodeView(t, out)
	if view.DocumentID != "5" || len(view.Clauses) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(view.HighRisk) != 1 || view.HighRisk[0].RiskLabel != "HIGH RISK" {
		t.Fatalf("unexpected high risk clauses: %+v", view.HighRisk)
	}
	if view.Status != "Processing complete! Found 2 clauses." {
		t.Fatalf("unexpected status %q", view.Status)
	}
	if info, err := os.Stat(workbook); err != nil || info.Size() == 0 {
		t.Fatalf("expected workbook at %s, stat err = %v", workbook, err)
	}
}

func TestPasteTooShortReportsValidationMessage(t *testing.T) {
	out, err := runCLI(t, "short", "paste", "--format", "json")
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := decodeView(t, out).Error; got != domain.MsgTextTooShort {
		t.Fatalf("unexpected error message %q", got)
	}
}

func TestUploadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.txt")
	if err := os.WriteFile(path, []byte("Terms of service"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := runCLI(t, "", "upload", path, "--format", "json")
	if err != nil {
		t.Fatalf("upload error = %v", err)
	}
	view := decodeView(t, out)
	if view.DocumentID != "doc-9" || view.Filename != "terms.txt" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Status != "Processing complete! Found 2 clauses in terms.txt" {
		t.Fatalf("unexpected status %q", view.Status)
	}
}

func TestUploadMissingFile(t *testing.T) {
	_, err := runCLI(t, "", "upload", filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil || !strings.Contains(err.Error(), "open document") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestStatsCommand(t *testing.T) {
	out, err := runCLI(t, "", "stats", "--format", "json")
	if err != nil {
		t.Fatalf("stats error = %v", err)
	}
	view := decodeView(t, out)
	if view.GlobalStats == nil || view.GlobalStats.TotalClauses != 17 {
		t.Fatalf("unexpected global stats: %+v", view.GlobalStats)
	}

	out, err = runCLI(t, "", "stats", "--format", "table")
	if err != nil {
		t.Fatalf("stats table error = %v", err)
	}
	if !strings.Contains(out, "17") {
		t.Fatalf("expected totals in table, got:\n%s", out)
	}
}

func TestUnknownFormatRejected(t *testing.T) {
	_, err := runCLI(t, "", "stats", "--format", "yaml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected format error, got %v", err)
	}
}

func TestPasteFromFileRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.bin")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x01}, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := runCLI(t, "", "paste", path)
	if err == nil || !strings.Contains(err.Error(), "unsupported binary format") {
		t.Fatalf("expected binary rejection, got %v", err)
	}
}
