// Package report renders a workflow snapshot for people and tools: styled
// terminal text, tables, markdown, JSON and XLSX workbooks.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

type Format string

const (
	FormatText     Format = "text"
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatText:
		return FormatText, nil
	case FormatTable:
		return FormatTable, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, table, markdown or json)", raw)
	}
}

type ClauseView struct {
	ID          domain.ID `json:"id"`
	Category    string    `json:"category"`
	ClauseText  string    `json:"clauseText"`
	Suggestion  string    `json:"suggestion"`
	RiskScore   float64   `json:"riskScore"`
	RiskPercent int       `json:"riskPercent"`
	RiskLabel   string    `json:"riskLabel"`
	RiskColor   string    `json:"riskColor"`
	Tint        string    `json:"tint"`
}

// View is the presentation model of a snapshot with every derived value
// computed from the clause list at build time.
type View struct {
	State         domain.WorkflowState  `json:"state"`
	Busy          domain.SubmissionKind `json:"busy,omitempty"`
	DocumentID    domain.ID             `json:"documentId,omitempty"`
	Filename      string                `json:"filename,omitempty"`
	Status        string                `json:"status,omitempty"`
	Error         string                `json:"error,omitempty"`
	DocumentStats *domain.DocumentStats `json:"documentStats,omitempty"`
	GlobalStats   *domain.GlobalStats   `json:"globalStats,omitempty"`
	Bands         domain.BandCounts     `json:"bands"`
	Clauses       []ClauseView          `json:"clauses"`
	HighRisk      []ClauseView          `json:"highRiskClauses"`
}

func NewView(snap domain.Snapshot) View {
	return View{
		State:         snap.State,
		Busy:          snap.BusyKind,
		DocumentID:    snap.DocumentID,
		Filename:      snap.Filename,
		Status:        snap.Status,
		Error:         snap.Error,
		DocumentStats: snap.DocumentStats(),
		GlobalStats:   snap.GlobalStats,
		Bands:         snap.Bands(),
		Clauses:       clauseViews(snap.Clauses),
		HighRisk:      clauseViews(snap.HighRiskClauses()),
	}
}

func NewClauseView(c domain.Clause) ClauseView {
	level := domain.Classify(c.RiskScore)
	return ClauseView{
		ID:          c.ID,
		Category:    c.Category,
		ClauseText:  c.ClauseText,
		Suggestion:  c.Suggestion,
		RiskScore:   c.RiskScore,
		RiskPercent: domain.RiskPercent(c.RiskScore),
		RiskLabel:   level.Label(),
		RiskColor:   level.Color(),
		Tint:        domain.TintFor(c.RiskScore).CSS(),
	}
}

func clauseViews(clauses []domain.Clause) []ClauseView {
	out := make([]ClauseView, 0, len(clauses))
	for _, c := range clauses {
		out = append(out, NewClauseView(c))
	}
	return out
}

func WriteJSON(w io.Writer, snap domain.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewView(snap))
}

// Render writes snap in the requested format. width bounds wrapped text.
func Render(w io.Writer, snap domain.Snapshot, format Format, width int) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, snap)
	case FormatTable:
		_, err := io.WriteString(w, Table(snap, TableASCII))
		return err
	case FormatMarkdown:
		out, err := RenderMarkdown(snap, width)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		_, err := io.WriteString(w, Terminal(snap, width))
		return err
	}
}
