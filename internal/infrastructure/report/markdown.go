package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour/v2"
	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

// Markdown builds a plain markdown report of the snapshot.
func Markdown(snap domain.Snapshot) string {
	var b strings.Builder

	b.WriteString("# Terms and conditions analysis\n\n")
	if snap.Error != "" {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", snap.Error)
	}
	if snap.Status != "" {
		fmt.Fprintf(&b, "_%s_\n\n", snap.Status)
	}
	if snap.HasDocument() {
		fmt.Fprintf(&b, "- Document: `%s`\n", snap.DocumentID)
		if snap.Filename != "" {
			fmt.Fprintf(&b, "- File: %s\n", snap.Filename)
		}
	}
	if stats := snap.DocumentStats(); stats != nil {
		fmt.Fprintf(&b, "- Clauses: %d\n- High risk: %d\n", stats.TotalClauses, stats.HighRiskClauses)
	}
	b.WriteString("\n")

	if high := snap.HighRiskClauses(); len(high) > 0 {
		b.WriteString("## High-risk clauses\n\n")
		for _, c := range high {
			fmt.Fprintf(&b, "- **%s** (%d%%)\n", c.Category, domain.RiskPercent(c.RiskScore))
		}
		b.WriteString("\n")
	}

	if len(snap.Clauses) > 0 {
		b.WriteString("## Clauses\n\n")
		for _, c := range snap.Clauses {
			level := domain.Classify(c.RiskScore)
			fmt.Fprintf(&b, "### %s: %s (%d%%)\n\n", level.Label(), c.Category, domain.RiskPercent(c.RiskScore))
			if text := strings.TrimSpace(c.ClauseText); text != "" {
				fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(text, "\n", "\n> "))
			}
			if s := strings.TrimSpace(c.Suggestion); s != "" {
				fmt.Fprintf(&b, "**Suggestion:** %s\n\n", s)
			}
		}
		b.WriteString("## Summary\n\n")
		b.WriteString(Table(snap, TableMarkdown))
		b.WriteString("\n")
	}

	if g := snap.GlobalStats; g != nil {
		fmt.Fprintf(&b, "---\n\nAcross all analyses: %d clauses, %d high risk.\n", g.TotalClauses, g.HighRiskClauses)
	}
	return b.String()
}

// RenderMarkdown renders the markdown report for a terminal.
func RenderMarkdown(snap domain.Snapshot, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(Markdown(snap))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
