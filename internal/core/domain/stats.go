package domain

// ComputeDocumentStats derives counts from the clause list. Callers recompute
// it on every read; the result is never stored alongside the clauses.
func ComputeDocumentStats(clauses []Clause) DocumentStats {
	stats := DocumentStats{TotalClauses: len(clauses)}
	for _, c := range clauses {
		if IsHighRisk(c.RiskScore) {
			stats.HighRiskClauses++
		}
	}
	return stats
}

// HighRiskClauses returns the clauses at or above HighRiskThreshold in their
// original relative order.
func HighRiskClauses(clauses []Clause) []Clause {
	out := make([]Clause, 0, len(clauses))
	for _, c := range clauses {
		if IsHighRisk(c.RiskScore) {
			out = append(out, c)
		}
	}
	return out
}

// BandCounts is the number of clauses per risk band.
type BandCounts struct {
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Low     int `json:"low"`
	Minimal int `json:"minimal"`
}

func CountBands(clauses []Clause) BandCounts {
	var counts BandCounts
	for _, c := range clauses {
		switch Classify(c.RiskScore) {
		case RiskHigh:
			counts.High++
		case RiskMedium:
			counts.Medium++
		case RiskLow:
			counts.Low++
		default:
			counts.Minimal++
		}
	}
	return counts
}
