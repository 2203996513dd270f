// Package contract holds the OpenAPI description of the remote analysis
// service and checks response bodies against it.
package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/kirillkom/consent-tracker/internal/core/domain"
)

// Component schema names.
const (
	SchemaSubmissionReceipt = "SubmissionReceipt"
	SchemaClauseList        = "ClauseList"
	SchemaGlobalStats       = "GlobalStats"
	SchemaErrorBody         = "ErrorBody"
)

//go:embed openapi.yaml
var document []byte

type Validator struct {
	doc *openapi3.T
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load analysis contract: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate analysis contract: %w", err)
	}
	return &Validator{doc: doc}, nil
}

// Validate checks a raw JSON body against a component schema. Violations are
// reported as domain.ErrContract.
func (v *Validator) Validate(schemaName string, body []byte) error {
	op := "validate " + schemaName
	if v == nil || v.doc == nil || v.doc.Components == nil {
		return nil
	}
	ref, ok := v.doc.Components.Schemas[schemaName]
	if !ok || ref == nil || ref.Value == nil {
		return fmt.Errorf("%s: unknown schema", op)
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return domain.WrapError(domain.ErrContract, op, err)
	}
	if err := ref.Value.VisitJSON(value); err != nil {
		return domain.WrapError(domain.ErrContract, op, err)
	}
	return nil
}

// Title names the contract version in logs.
func (v *Validator) Title() string {
	if v == nil || v.doc == nil || v.doc.Info == nil {
		return ""
	}
	return v.doc.Info.Title + " " + v.doc.Info.Version
}
