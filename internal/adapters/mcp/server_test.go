package mcpadapter

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

type workflowFake struct {
	snap      domain.Snapshot
	submitErr error
	pasted    []string
	files     map[string]string
}

func (f *workflowFake) SubmitFile(_ context.Context, file *domain.FileUpload) error {
	if f.files == nil {
		f.files = map[string]string{}
	}
	body, _ := io.ReadAll(file.Body)
	f.files[file.Filename] = string(body)
	return f.submitErr
}

func (f *workflowFake) SubmitPastedText(_ context.Context, text string) error {
	f.pasted = append(f.pasted, text)
	return f.submitErr
}

func (f *workflowFake) RefreshGlobalStats(context.Context) {
	f.snap.GlobalStats = &domain.GlobalStats{TotalClauses: 12, HighRiskClauses: 3}
}

func (f *workflowFake) Reset() error              { return nil }
func (f *workflowFake) Snapshot() domain.Snapshot { return f.snap }
func (f *workflowFake) Wait()                     {}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func readySnapshot() domain.Snapshot {
	return domain.Snapshot{
		State:      domain.StateReady,
		DocumentID: "d1",
		Clauses:    []domain.Clause{{ID: "c1", Category: "Data Sharing", RiskScore: 0.9}},
		ClausesSet: true,
	}
}

func TestAnalyzeTextReturnsView(t *testing.T) {
	wf := &workflowFake{snap: readySnapshot()}
	s := New(wf, "test")

	res, err := s.analyzeText(context.Background(), callRequest(ToolAnalyzeText, map[string]any{"text": "terms"}))
	if err != nil {
		t.Fatalf("analyzeText() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	var view map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view["documentId"] != "d1" || len(wf.pasted) != 1 {
		t.Fatalf("unexpected result %v / pasted %v", view, wf.pasted)
	}
}

func TestAnalyzeTextReportsValidationMessage(t *testing.T) {
	wf := &workflowFake{submitErr: domain.NewValidationError(domain.MsgTextTooShort)}
	s := New(wf, "test")

	res, err := s.analyzeText(context.Background(), callRequest(ToolAnalyzeText, map[string]any{"text": "short"}))
	if err != nil {
		t.Fatalf("analyzeText() error = %v", err)
	}
	if !res.IsError || resultText(t, res) != domain.MsgTextTooShort {
		t.Fatalf("expected validation tool error, got %+v", res)
	}
}

func TestAnalyzeTextRequiresArgument(t *testing.T) {
	s := New(&workflowFake{}, "test")
	res, err := s.analyzeText(context.Background(), callRequest(ToolAnalyzeText, map[string]any{}))
	if err != nil {
		t.Fatalf("analyzeText() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected error for missing text")
	}
}

func TestAnalyzeFileUploadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tos.txt")
	if err := os.WriteFile(path, []byte("file terms"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	wf := &workflowFake{snap: readySnapshot()}
	s := New(wf, "test")

	res, err := s.analyzeFile(context.Background(), callRequest(ToolAnalyzeFile, map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("analyzeFile() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if wf.files["tos.txt"] != "file terms" {
		t.Fatalf("unexpected uploaded files: %v", wf.files)
	}

	res, _ = s.analyzeFile(context.Background(), callRequest(ToolAnalyzeFile, map[string]any{"path": filepath.Join(t.TempDir(), "missing.pdf")}))
	if !res.IsError {
		t.Fatalf("expected error for missing file")
	}
}

func TestSubmissionFailureUsesSnapshotMessage(t *testing.T) {
	wf := &workflowFake{
		snap:      domain.Snapshot{State: domain.StateErrored, Error: "Processing failed"},
		submitErr: domain.WrapError(domain.ErrSubmission, "paste", io.EOF),
	}
	s := New(wf, "test")

	res, _ := s.analyzeText(context.Background(), callRequest(ToolAnalyzeText, map[string]any{"text": strings.Repeat("x", 60)}))
	if !res.IsError || resultText(t, res) != "Processing failed" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCurrentAnalysisMarkdownAndStats(t *testing.T) {
	wf := &workflowFake{snap: readySnapshot()}
	s := New(wf, "test")

	res, err := s.currentAnalysis(context.Background(), callRequest(ToolCurrentAnalysis, map[string]any{"format": "markdown"}))
	if err != nil {
		t.Fatalf("currentAnalysis() error = %v", err)
	}
	if !strings.Contains(resultText(t, res), "## High-risk clauses") {
		t.Fatalf("expected markdown report, got %s", resultText(t, res))
	}

	res, err = s.globalStats(context.Background(), callRequest(ToolGlobalStats, nil))
	if err != nil {
		t.Fatalf("globalStats() error = %v", err)
	}
	if !strings.Contains(resultText(t, res), `"totalClauses": 12`) {
		t.Fatalf("unexpected stats result: %s", resultText(t, res))
	}
}
