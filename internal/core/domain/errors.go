package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrSubmission   = errors.New("submission failed")
	ErrClauseFetch  = errors.New("clause fetch failed")
	ErrStatsFetch   = errors.New("stats fetch failed")
	ErrBusy         = errors.New("submission already in flight")
	ErrNotFound     = errors.New("not found")
	ErrTemporary    = errors.New("temporary failure")
	ErrContract     = errors.New("response violates service contract")
	ErrStaleRequest = errors.New("superseded by a newer submission")
)

const (
	MsgChooseFile     = "Please choose a file"
	MsgPasteSomething = "Please paste some text first"
	MsgTextTooShort   = "Text is too short. Please paste a complete terms and conditions document."
)

// ValidationError is a local, pre-network rejection. Message is shown to the
// user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// ServiceFailure is implemented by gateway errors that carry a response from
// the analysis service.
type ServiceFailure interface {
	error
	HTTPStatus() int
	ServiceMessage() string
}
