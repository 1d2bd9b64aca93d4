package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"eduboard/internal/config"
	"eduboard/internal/infrastructure"
)

// Backend endpoints relative to the base URL.
const (
	UploadExcelPath = "/upload-excel"
	ProcessDataPath = "/process-data"
	FilesPath       = "/files"
	StatisticsPath  = "/statistics"
	HealthPath      = "/health"

	// UploadField is the multipart field the backend reads workbooks from.
	UploadField = "excel_file"

	processDataVersion = "1.0"
	maxResponseBytes   = 4 << 20
)

// Metadata describes where a payload came from.
type Metadata struct {
	Source  string `json:"source"`
	Type    string `json:"type,omitempty"`
	Version string `json:"version,omitempty"`
}

// Envelope is the body posted to the submit endpoint.
type Envelope struct {
	FileName  string      `json:"fileName"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	Metadata  Metadata    `json:"metadata"`
}

type processDataPayload struct {
	FileName  string      `json:"file_name"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	Metadata  Metadata    `json:"metadata"`
}

// Result is a successful backend response.
type Result struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("backend %s %s returned status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Client talks to the remote backend.
type Client struct {
	baseURL    string
	submitPath string
	source     string
	dataType   string
	httpClient *http.Client
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records submissions on m.
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a backend client from cfg.
func NewClient(cfg config.BackendConfig, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		submitPath: cfg.SubmitPath,
		source:     cfg.Source,
		dataType:   cfg.DataType,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With(slog.String("component", "submission_client")),
		now:    time.Now,
	}
	if c.submitPath == "" {
		c.submitPath = config.DefaultSubmitPath
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string { return c.baseURL }

// NewEnvelope wraps data with the configured source and type.
func (c *Client) NewEnvelope(fileName string, data interface{}) Envelope {
	return Envelope{
		FileName:  fileName,
		Data:      data,
		Timestamp: c.now().UTC(),
		Metadata:  Metadata{Source: c.source, Type: c.dataType},
	}
}

// Submit posts env to the submit endpoint. Any 2xx status is success.
func (c *Client) Submit(ctx context.Context, env Envelope) (*Result, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	start := time.Now()
	res, err := c.do(ctx, http.MethodPost, c.submitPath, "application/json", bytes.NewReader(body))
	duration := time.Since(start)

	statusCode := 0
	var se *StatusError
	switch {
	case res != nil:
		statusCode = res.StatusCode
	case errors.As(err, &se):
		statusCode = se.StatusCode
	}
	infrastructure.RecordSubmissionMetrics(ctx, c.metrics, statusCode, duration, err == nil)

	if err != nil {
		c.logger.WarnContext(ctx, "submission failed",
			slog.String("file_name", env.FileName),
			slog.Int("status_code", statusCode),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.InfoContext(ctx, "submission accepted",
		slog.String("file_name", env.FileName),
		slog.Int("status_code", statusCode),
		slog.Duration("duration", duration),
	)
	return res, nil
}

// UploadFile sends a workbook as multipart form data.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadField, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to copy workbook: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	return c.do(ctx, http.MethodPost, UploadExcelPath, mw.FormDataContentType(), &buf)
}

// ProcessData posts processed data under the snake_case payload the
// process-data endpoint expects.
func (c *Client) ProcessData(ctx context.Context, fileName string, data interface{}) (*Result, error) {
	body, err := json.Marshal(processDataPayload{
		FileName:  fileName,
		Data:      data,
		Timestamp: c.now().UTC(),
		Metadata:  Metadata{Source: c.source, Version: processDataVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, ProcessDataPath, "application/json", bytes.NewReader(body))
}

// ProcessedFiles lists the files the backend has stored.
func (c *Client) ProcessedFiles(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodGet, FilesPath, "", nil)
}

// Statistics fetches the backend's aggregate statistics.
func (c *Client) Statistics(ctx context.Context) (*Result, error) {
	return c.do(ctx, http.MethodGet, StatisticsPath, "", nil)
}

// HealthCheck reports whether the backend answers its health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, HealthPath, "", nil)
	if err != nil {
		return fmt.Errorf("backend not available: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if traceID := infrastructure.GetTraceID(ctx); traceID != "" {
		req.Header.Set("X-Request-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	msg := extractMessage(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}

	res := &Result{StatusCode: resp.StatusCode, Message: msg}
	if gjson.ValidBytes(raw) {
		res.Body = json.RawMessage(raw)
	}
	return res, nil
}

// messagePaths are tried in order; FastAPI reports errors under "detail".
var messagePaths = []string{"message", "detail", "error", "detail.0.msg"}

func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		s := strings.TrimSpace(string(body))
		if len(s) > 200 {
			s = s[:200]
		}
		return s
	}
	for _, path := range messagePaths {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
