package contract

import (
	"context"
	"testing"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

func loadValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return v
}

func TestEmbeddedDocumentLoads(t *testing.T) {
	v := loadValidator(t)
	if got := v.Title(); got != "Terms and conditions analysis service 1.0" {
		t.Fatalf("unexpected contract title %q", got)
	}
	var missing *Validator
	if missing.Title() != "" {
		t.Fatalf("nil validator must have an empty title")
	}
	if got := len(v.doc.Paths.Map()); got != 4 {
		t.Fatalf("expected 4 service paths, got %d", got)
	}
}

func TestValidateAcceptsServiceShapes(t *testing.T) {
	v := loadValidator(t)
	cases := []struct {
		schema string
		body   string
	}{
		{SchemaSubmissionReceipt, `{"documentId":12,"filename":"tos.pdf","clausesFound":3,"highRiskClauses":1}`},
		{SchemaSubmissionReceipt, `{"documentId":"d1","clausesFound":0,"highRiskClauses":0}`},
		{SchemaClauseList, `[{"id":1,"category":"Data Sharing","clauseText":"We share","riskScore":0.8,"suggestion":null}]`},
		{SchemaClauseList, `[]`},
		{SchemaGlobalStats, `{"totalDocuments":4,"totalClauses":20,"highRiskClauses":5}`},
		{SchemaErrorBody, `{"error":"Unsupported file type"}`},
	}
	for _, tc := range cases {
		if err := v.Validate(tc.schema, []byte(tc.body)); err != nil {
			t.Fatalf("Validate(%s, %s) error = %v", tc.schema, tc.body, err)
		}
	}
}

func TestValidateRejectsContractViolations(t *testing.T) {
	v := loadValidator(t)
	cases := []struct {
		name   string
		schema string
		body   string
	}{
		{"missing document id", SchemaSubmissionReceipt, `{"clausesFound":3,"highRiskClauses":1}`},
		{"negative count", SchemaSubmissionReceipt, `{"documentId":"d1","clausesFound":-1,"highRiskClauses":0}`},
		{"score above one", SchemaClauseList, `[{"id":"c1","riskScore":1.2}]`},
		{"score below zero", SchemaClauseList, `[{"id":"c1","riskScore":-0.1}]`},
		{"not a list", SchemaClauseList, `{"id":"c1","riskScore":0.1}`},
		{"missing totals", SchemaGlobalStats, `{}`},
		{"not json", SchemaGlobalStats, `<html>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.schema, []byte(tc.body))
			if !domain.IsKind(err, domain.ErrContract) {
				t.Fatalf("expected contract error, got %v", err)
			}
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	v := loadValidator(t)
	if err := v.Validate("Nope", []byte(`{}`)); err == nil {
		t.Fatalf("expected error for unknown schema")
	}
}
