package report

import (
	"fmt"
	"io"
	"math"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const (
	clauseSheet  = "Clauses"
	summarySheet = "Summary"
)

// WriteXLSX exports the clause list and counters as a workbook. Rows are
// filled with the clause's tint blended over white.
func WriteXLSX(w io.Writer, snap domain.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", clauseSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeClauseSheet(f, snap.Clauses); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, snap); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeClauseSheet(f *excelize.File, clauses []domain.Clause) error {
	header := []any{"ID", "Category", "Risk", "Score", "Clause", "Suggestion"}
	if err := f.SetSheetRow(clauseSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(clauseSheet, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	styles := make(map[domain.RiskLevel]int)
	for i, c := range clauses {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []any{
			c.ID.String(),
			c.Category,
			domain.Classify(c.RiskScore).Label(),
			c.RiskScore,
			c.ClauseText,
			c.Suggestion,
		}
		if err := f.SetSheetRow(clauseSheet, cell, &values); err != nil {
			return fmt.Errorf("write clause row %d: %w", row, err)
		}

		level := domain.Classify(c.RiskScore)
		tint := domain.TintFor(c.RiskScore)
		if tint.Transparent() {
			continue
		}
		styleID, ok := styles[level]
		if !ok {
			styleID, err = f.NewStyle(&excelize.Style{
				Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{blendOverWhite(tint)}},
				Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			})
			if err != nil {
				return fmt.Errorf("row style: %w", err)
			}
			styles[level] = styleID
		}
		last, err := excelize.CoordinatesToCellName(len(values), row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(clauseSheet, cell, last, styleID); err != nil {
			return fmt.Errorf("apply row style: %w", err)
		}
	}

	for col, width := range map[string]float64{"A": 10, "B": 24, "C": 16, "D": 8, "E": 80, "F": 60} {
		if err := f.SetColWidth(clauseSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, snap domain.Snapshot) error {
	rows := [][]any{{"Document", snap.DocumentID.String()}, {"File", snap.Filename}}
	if stats := snap.DocumentStats(); stats != nil {
		rows = append(rows,
			[]any{"Clauses", stats.TotalClauses},
			[]any{"High risk", stats.HighRiskClauses},
		)
	}
	bands := snap.Bands()
	rows = append(rows,
		[]any{domain.RiskHigh.Label(), bands.High},
		[]any{domain.RiskMedium.Label(), bands.Medium},
		[]any{domain.RiskLow.Label(), bands.Low},
		[]any{domain.RiskMinimal.Label(), bands.Minimal},
	)
	if g := snap.GlobalStats; g != nil {
		rows = append(rows,
			[]any{"All analyses: clauses", g.TotalClauses},
			[]any{"All analyses: high risk", g.HighRiskClauses},
		)
	}

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

// blendOverWhite flattens a translucent tint into an opaque RGB hex.
func blendOverWhite(t domain.Tint) string {
	mix := func(c uint8) uint8 {
		return uint8(math.Round(255 - t.Alpha*(255-float64(c))))
	}
	return domain.Tint{R: mix(t.R), G: mix(t.G), B: mix(t.B), Alpha: 1}.Hex()
}
