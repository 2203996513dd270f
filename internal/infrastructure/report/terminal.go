package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5cb85c"))

	errorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#d9534f"))

	mutedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	clauseStyle = lipgloss.NewStyle().
		PaddingLeft(2)
)

func labelStyle(level domain.RiskLevel) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(level.Color()))
}

// Terminal renders a snapshot for an interactive terminal.
func Terminal(snap domain.Snapshot, width int) string {
	var b strings.Builder

	if snap.Error != "" {
		b.WriteString(errorStyle.Render(snap.Error) + "\n")
	}
	if snap.Status != "" {
		b.WriteString(statusStyle.Render(snap.Status) + "\n")
	}

	if snap.HasDocument() {
		title := "Document " + snap.DocumentID.String()
		if snap.Filename != "" {
			title += " (" + snap.Filename + ")"
		}
		b.WriteString("\n" + titleStyle.Render(title) + "\n")
	}
	if stats := snap.DocumentStats(); stats != nil {
		fmt.Fprintf(&b, "Clauses: %d  High risk: %d\n", stats.TotalClauses, stats.HighRiskClauses)
	}
	if len(snap.Clauses) > 0 {
		bands := snap.Bands()
		b.WriteString(mutedStyle.Render(fmt.Sprintf("high %d · medium %d · low %d · minimal %d",
			bands.High, bands.Medium, bands.Low, bands.Minimal)) + "\n")
	}

	if high := snap.HighRiskClauses(); len(high) > 0 {
		b.WriteString("\n" + labelStyle(domain.RiskHigh).Render(fmt.Sprintf("High-risk clauses (%d)", len(high))) + "\n")
		for _, c := range high {
			fmt.Fprintf(&b, "  • %s %d%%\n", c.Category, domain.RiskPercent(c.RiskScore))
		}
	}

	for _, c := range snap.Clauses {
		b.WriteString("\n" + renderClause(c, width))
	}

	if g := snap.GlobalStats; g != nil {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("All analyses: %d clauses, %d high risk", g.TotalClauses, g.HighRiskClauses)) + "\n")
	}
	return b.String()
}

func renderClause(c domain.Clause, width int) string {
	level := domain.Classify(c.RiskScore)
	body := clauseStyle
	if width > 4 {
		body = body.Width(width)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %d%%\n", labelStyle(level).Render(level.Label()), c.Category, domain.RiskPercent(c.RiskScore))
	if text := strings.TrimSpace(c.ClauseText); text != "" {
		b.WriteString(body.Render(text) + "\n")
	}
	if s := strings.TrimSpace(c.Suggestion); s != "" {
		b.WriteString(body.Render(mutedStyle.Render("Suggestion: ")+s) + "\n")
	}
	return b.String()
}
