package analysisapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/resilience"
)

// StatusError is a non-2xx answer from the analysis service. Message is the
// body's "error" field when the service sent one.
type StatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "analysis status error"
	}
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("analysis %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("analysis %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Message))
}

func (e *StatusError) HTTPStatus() int { return e.StatusCode }

func (e *StatusError) ServiceMessage() string { return e.Message }

func (e *StatusError) Is(target error) bool {
	return target == domain.ErrNotFound && e.StatusCode == http.StatusNotFound
}

func classifyAnalysisError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Temporary: true, RecordFailure: true}
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if isTemporaryHTTPStatus(statusErr.StatusCode) {
			return resilience.ErrorClassification{Temporary: true, RecordFailure: true}
		}
		return resilience.ErrorClassification{}
	}
	if domain.IsKind(err, domain.ErrContract) {
		return resilience.ErrorClassification{RecordFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Temporary: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{RecordFailure: true}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyAnalysisError(err).Temporary {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isTemporaryHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
