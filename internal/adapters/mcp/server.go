// Package mcpadapter exposes the document workflow as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/core/ports"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	ToolAnalyzeText     = "analyze_text"
	ToolAnalyzeFile     = "analyze_file"
	ToolCurrentAnalysis = "current_analysis"
	ToolGlobalStats     = "global_stats"
)

type Server struct {
	workflow ports.DocumentWorkflow
	mcp      *server.MCPServer
}

func New(workflow ports.DocumentWorkflow, version string) *Server {
	s := &Server{
		workflow: workflow,
		mcp:      server.NewMCPServer("consent-tracker", version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio blocks until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool(ToolAnalyzeText,
		mcp.WithDescription("Analyse pasted terms and conditions text and return clause risk findings."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full document text, at least 50 characters.")),
	), s.analyzeText)

	s.mcp.AddTool(mcp.NewTool(ToolAnalyzeFile,
		mcp.WithDescription("Upload a local document for analysis and return clause risk findings."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file to upload.")),
	), s.analyzeFile)

	s.mcp.AddTool(mcp.NewTool(ToolCurrentAnalysis,
		mcp.WithDescription("Return the current analysis without contacting the service."),
		mcp.WithString("format", mcp.Description("json (default) or markdown.")),
	), s.currentAnalysis)

	s.mcp.AddTool(mcp.NewTool(ToolGlobalStats,
		mcp.WithDescription("Fetch clause counts across every analysed document."),
	), s.globalStats)
}

func (s *Server) analyzeText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.submissionResult(s.workflow.SubmitPastedText(ctx, text))
}

func (s *Server) analyzeFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("open %s: %v", path, err)), nil
	}
	defer f.Close()

	upload := &domain.FileUpload{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Body:        f,
	}
	return s.submissionResult(s.workflow.SubmitFile(ctx, upload))
}

func (s *Server) currentAnalysis(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.workflow.Snapshot()
	if req.GetString("format", "json") == "markdown" {
		return mcp.NewToolResultText(report.Markdown(snap)), nil
	}
	return jsonResult(report.NewView(snap))
}

func (s *Server) globalStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.workflow.RefreshGlobalStats(ctx)
	stats := s.workflow.Snapshot().GlobalStats
	if stats == nil {
		return mcp.NewToolResultError("global stats are unavailable"), nil
	}
	return jsonResult(stats)
}

// submissionResult reports workflow failures as tool errors so the calling
// model sees the same message a user would.
func (s *Server) submissionResult(err error) (*mcp.CallToolResult, error) {
	snap := s.workflow.Snapshot()
	if err != nil {
		var validation *domain.ValidationError
		switch {
		case errors.As(err, &validation):
			return mcp.NewToolResultError(validation.Message), nil
		case snap.Error != "":
			return mcp.NewToolResultError(snap.Error), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return jsonResult(report.NewView(snap))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
