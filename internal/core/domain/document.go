package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// ID is an opaque identifier assigned by the analysis service. The service
// may encode it as a JSON number or a JSON string; both decode to the same text.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type Clause struct {
	ID         ID      `json:"id"`
	Category   string  `json:"category"`
	ClauseText string  `json:"clauseText"`
	RiskScore  float64 `json:"riskScore"`
	Suggestion string  `json:"suggestion"`
}

// Validate checks the score invariant 0 <= riskScore <= 1.
func (c Clause) Validate() error {
	if math.IsNaN(c.RiskScore) || c.RiskScore < 0 || c.RiskScore > 1 {
		return WrapError(ErrContract, "validate clause", fmt.Errorf("clause %q risk score %v outside [0,1]", c.ID, c.RiskScore))
	}
	return nil
}

func ValidateClauses(clauses []Clause) error {
	for _, c := range clauses {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type DocumentStats struct {
	TotalClauses    int `json:"totalClauses"`
	HighRiskClauses int `json:"highRiskClauses"`
}

type GlobalStats struct {
	TotalDocuments  int `json:"totalDocuments,omitempty"`
	TotalClauses    int `json:"totalClauses"`
	HighRiskClauses int `json:"highRiskClauses"`
}

// SubmissionReceipt is the service's answer to an upload or paste call.
type SubmissionReceipt struct {
	DocumentID      ID     `json:"documentId"`
	Filename        string `json:"filename,omitempty"`
	ClausesFound    int    `json:"clausesFound"`
	HighRiskClauses int    `json:"highRiskClauses"`
}

func (r SubmissionReceipt) Stats() DocumentStats {
	return DocumentStats{
		TotalClauses:    r.ClausesFound,
		HighRiskClauses: r.HighRiskClauses,
	}
}

// FileUpload is a file chosen for submission. A nil *FileUpload means no file
// was chosen.
type FileUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type SubmissionKind string

const (
	KindUpload SubmissionKind = "upload"
	KindPaste  SubmissionKind = "paste"
)

// MinPasteLength is the shortest pasted text accepted for analysis, counted
// in characters before trimming.
const MinPasteLength = 50
