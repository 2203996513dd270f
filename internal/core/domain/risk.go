package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Band lower bounds. Each bound is inclusive for its own band.
const (
	HighRiskThreshold   = 0.70
	MediumRiskThreshold = 0.50
	LowRiskThreshold    = 0.25
)

type RiskLevel int

const (
	RiskMinimal RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
)

// Classify maps a score to its band. Scores outside [0,1] fall into the
// nearest band and NaN is treated as minimal.
func Classify(score float64) RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return RiskHigh
	case score >= MediumRiskThreshold:
		return RiskMedium
	case score >= LowRiskThreshold:
		return RiskLow
	default:
		return RiskMinimal
	}
}

func IsHighRisk(score float64) bool {
	return Classify(score) == RiskHigh
}

func (l RiskLevel) Label() string {
	switch l {
	case RiskHigh:
		return "HIGH RISK"
	case RiskMedium:
		return "MEDIUM RISK"
	case RiskLow:
		return "LOW RISK"
	default:
		return "MINIMAL RISK"
	}
}

// Color is the label's display colour.
func (l RiskLevel) Color() string {
	switch l {
	case RiskHigh:
		return "#d9534f"
	case RiskMedium:
		return "#f0ad4e"
	case RiskLow:
		return "#5bc0de"
	default:
		return "#5cb85c"
	}
}

// Weight orders bands for presentation; higher is more severe.
func (l RiskLevel) Weight() int {
	return int(l)
}

func (l RiskLevel) String() string { return l.Label() }

func (l RiskLevel) MarshalText() ([]byte, error) {
	return []byte(l.Label()), nil
}

// Tint is a translucent background colour. It shares band thresholds with
// Classify but not its palette.
type Tint struct {
	R, G, B uint8
	Alpha   float64
}

func (t Tint) Transparent() bool { return t.Alpha == 0 }

func (t Tint) CSS() string {
	if t.Transparent() {
		return "transparent"
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", t.R, t.G, t.B, trimFloat(t.Alpha))
}

// Hex is the opaque RGB part of the tint, without alpha.
func (t Tint) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", t.R, t.G, t.B)
}

func TintFor(score float64) Tint {
	switch Classify(score) {
	case RiskHigh:
		return Tint{R: 255, G: 0, B: 0, Alpha: 0.15}
	case RiskMedium:
		return Tint{R: 255, G: 165, B: 0, Alpha: 0.12}
	case RiskLow:
		return Tint{R: 255, G: 255, B: 0, Alpha: 0.12}
	default:
		return Tint{}
	}
}

// RiskPercent renders a score as a whole percentage, e.g. 0.834 -> 83.
func RiskPercent(score float64) int {
	return int(math.Round(score * 100))
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
