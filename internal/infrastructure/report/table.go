package report

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

type TableMode int

const (
	TableASCII TableMode = iota
	TableMarkdown
)

// Table lists the clauses with their bands and a totals footer.
func Table(snap domain.Snapshot, mode TableMode) string {
	w := table.NewWriter()
	if mode == TableASCII {
		w.SetStyle(table.StyleLight)
	}

	w.AppendHeader(table.Row{"#", "Category", "Risk", "Score", "Suggestion"})
	for i, c := range snap.Clauses {
		w.AppendRow(table.Row{
			i + 1,
			c.Category,
			domain.Classify(c.RiskScore).Label(),
			fmt.Sprintf("%d%%", domain.RiskPercent(c.RiskScore)),
			c.Suggestion,
		})
	}
	if stats := snap.DocumentStats(); stats != nil {
		w.AppendFooter(table.Row{"", "Total", fmt.Sprintf("%d high", stats.HighRiskClauses), stats.TotalClauses, ""})
	}
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 60},
	})

	if mode == TableMarkdown {
		return w.RenderMarkdown() + "\n"
	}
	return w.Render() + "\n"
}

// StatsTable renders document and global counters side by side.
func StatsTable(doc *domain.DocumentStats, global *domain.GlobalStats) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Scope", "Documents", "Clauses", "High risk"})
	if doc != nil {
		w.AppendRow(table.Row{"Current document", 1, doc.TotalClauses, doc.HighRiskClauses})
	}
	if global != nil {
		docs := "-"
		if global.TotalDocuments > 0 {
			docs = fmt.Sprint(global.TotalDocuments)
		}
		w.AppendRow(table.Row{"All analyses", docs, global.TotalClauses, global.HighRiskClauses})
	}
	return w.Render() + "\n"
}
