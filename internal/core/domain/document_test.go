package domain

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":42,"b":"doc-7","c":null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A != "42" || payload.B != "doc-7" || !payload.C.IsZero() {
		t.Fatalf("unexpected ids: %+v", payload)
	}
}

func TestIDRejectsObjects(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatalf("expected error for object id")
	}
}

func TestClauseValidateRange(t *testing.T) {
	if err := (Clause{ID: "ok", RiskScore: 1}).Validate(); err != nil {
		t.Fatalf("score 1 must be valid: %v", err)
	}
	err := ValidateClauses([]Clause{{ID: "ok", RiskScore: 0}, {ID: "bad", RiskScore: 1.2}})
	if !IsKind(err, ErrContract) {
		t.Fatalf("expected ErrContract, got %v", err)
	}
}

func TestValidationErrorIsKind(t *testing.T) {
	err := NewValidationError(MsgChooseFile)
	if !IsKind(err, ErrValidation) {
		t.Fatalf("expected ErrValidation kind")
	}
	if err.Error() != "Please choose a file" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
