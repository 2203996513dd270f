package analysisapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/observability/logging"
)

const (
	requestIDHeader  = "X-Request-Id"
	maxErrorBodySize = 64 << 10
	maxBodySize      = 32 << 20
)

type bodyFunc func() (io.Reader, string)

func (c *Client) call(
	ctx context.Context,
	operation, method, path string,
	body bodyFunc,
	schema string,
	out any,
) error {
	start := time.Now()
	run := func(ctx context.Context) error {
		return c.roundTrip(ctx, operation, method, path, body, schema, out)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, run, classifyAnalysisError)
	} else {
		err = run(ctx)
	}
	err = wrapTemporaryIfNeeded(operation, err)

	if c.observer != nil {
		c.observer.ObserveGatewayCall(operation, callOutcome(err), time.Since(start))
	}
	if err != nil {
		c.logger.Debug("analysis_call_failed", "operation", operation, "error", err)
	}
	return err
}

func (c *Client) roundTrip(
	ctx context.Context,
	operation, method, path string,
	body bodyFunc,
	schema string,
	out any,
) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		reader, contentType = body()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("analysis %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(operation, resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read %s response: %w", operation, err)
	}
	if c.validator != nil {
		if err := c.validator.Validate(schema, raw); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return domain.WrapError(domain.ErrContract, "decode "+operation+" response", err)
	}
	return nil
}

func newStatusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	statusErr := &StatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		statusErr.Message = payload.Error
	}
	return statusErr
}

func callOutcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case domain.IsKind(err, domain.ErrContract):
		return "contract_error"
	case errors.As(err, &statusErr):
		return "http_error"
	case domain.IsKind(err, domain.ErrTemporary):
		return "unavailable"
	default:
		return "error"
	}
}
