package analysisapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/contract"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/resilience"
)

const (
	OperationUpload      = "upload"
	OperationPaste       = "paste"
	OperationClauses     = "fetch_clauses"
	OperationGlobalStats = "fetch_global_stats"
)

// CallObserver receives one observation per gateway call.
type CallObserver interface {
	ObserveGatewayCall(operation, outcome string, duration time.Duration)
}

type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	Executor   *resilience.Executor
	// Validator, when set, checks every 2xx body against the service contract.
	Validator *contract.Validator
	Observer  CallObserver
	Logger    *slog.Logger
}

// Client talks to the remote analysis service and implements
// ports.AnalysisGateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	validator  *contract.Validator
	observer   CallObserver
	logger     *slog.Logger
}

func New(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		executor:   opts.Executor,
		validator:  opts.Validator,
		observer:   opts.Observer,
		logger:     logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Upload(ctx context.Context, file domain.FileUpload) (domain.SubmissionReceipt, error) {
	if file.Body == nil {
		return domain.SubmissionReceipt{}, domain.NewValidationError(domain.MsgChooseFile)
	}
	body, contentType, err := encodeMultipart(file)
	if err != nil {
		return domain.SubmissionReceipt{}, fmt.Errorf("encode upload request: %w", err)
	}

	var receipt domain.SubmissionReceipt
	err = c.call(ctx, OperationUpload, http.MethodPost, "/api/documents/upload", func() (io.Reader, string) {
		return bytes.NewReader(body), contentType
	}, contract.SchemaSubmissionReceipt, &receipt)
	if err != nil {
		return domain.SubmissionReceipt{}, err
	}
	return receipt, nil
}

func (c *Client) PasteText(ctx context.Context, text string) (domain.SubmissionReceipt, error) {
	payload, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return domain.SubmissionReceipt{}, fmt.Errorf("marshal paste request: %w", err)
	}

	var receipt domain.SubmissionReceipt
	err = c.call(ctx, OperationPaste, http.MethodPost, "/api/documents/paste", func() (io.Reader, string) {
		return bytes.NewReader(payload), "application/json"
	}, contract.SchemaSubmissionReceipt, &receipt)
	if err != nil {
		return domain.SubmissionReceipt{}, err
	}
	return receipt, nil
}

func (c *Client) FetchClauses(ctx context.Context, documentID domain.ID) ([]domain.Clause, error) {
	if documentID.IsZero() {
		return nil, domain.WrapError(domain.ErrNotFound, OperationClauses, fmt.Errorf("document id is empty"))
	}

	var clauses []domain.Clause
	path := "/api/documents/" + url.PathEscape(documentID.String()) + "/clauses"
	if err := c.call(ctx, OperationClauses, http.MethodGet, path, nil, contract.SchemaClauseList, &clauses); err != nil {
		return nil, err
	}
	if clauses == nil {
		clauses = []domain.Clause{}
	}
	return clauses, nil
}

func (c *Client) FetchGlobalStats(ctx context.Context) (domain.GlobalStats, error) {
	var stats domain.GlobalStats
	if err := c.call(ctx, OperationGlobalStats, http.MethodGet, "/api/documents/stats", nil, contract.SchemaGlobalStats, &stats); err != nil {
		return domain.GlobalStats{}, err
	}
	return stats, nil
}

func encodeMultipart(file domain.FileUpload) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := file.Filename
	if strings.TrimSpace(filename) == "" {
		filename = "document"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
