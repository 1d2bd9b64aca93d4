package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics holds the application instruments.
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	WorkbooksProcessed metric.Int64Counter
	WorkbookBytes      metric.Int64Counter
	SheetsProcessed    metric.Int64Counter
	RecordsExtracted   metric.Int64Counter
	ProcessingDuration metric.Float64Histogram
	ParseFailures      metric.Int64Counter

	SubmissionsTotal   metric.Int64Counter
	SubmissionDuration metric.Float64Histogram

	WebSocketClients metric.Int64UpDownCounter
	SystemErrors     metric.Int64Counter
}

// CreateBusinessMetrics registers every instrument on meter.
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests", ""},
		{&m.WorkbooksProcessed, "workbooks_processed_total", "Workbooks run through the normalizer", ""},
		{&m.WorkbookBytes, "workbook_bytes_total", "Bytes of uploaded workbooks", "By"},
		{&m.SheetsProcessed, "sheets_processed_total", "Sheets run through header detection", ""},
		{&m.RecordsExtracted, "records_extracted_total", "Records produced from data rows", ""},
		{&m.ParseFailures, "workbook_parse_failures_total", "Uploads that could not be read as a workbook", ""},
		{&m.SubmissionsTotal, "backend_submissions_total", "Datasets forwarded to the remote backend", ""},
		{&m.SystemErrors, "system_errors_total", "Total number of system errors", ""},
	}
	for _, c := range counters {
		opts := []metric.Int64CounterOption{metric.WithDescription(c.desc)}
		if c.unit != "" {
			opts = append(opts, metric.WithUnit(c.unit))
		}
		if *c.dst, err = meter.Int64Counter(c.name, opts...); err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds"},
		{&m.ProcessingDuration, "workbook_processing_duration_seconds", "Time spent parsing and normalizing a workbook"},
		{&m.SubmissionDuration, "backend_submission_duration_seconds", "Round trip of a backend submission"},
	}
	for _, h := range histograms {
		if *h.dst, err = meter.Float64Histogram(h.name, metric.WithDescription(h.desc), metric.WithUnit("s")); err != nil {
			return nil, fmt.Errorf("histogram %s: %w", h.name, err)
		}
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("Number of active HTTP requests")); err != nil {
		return nil, err
	}
	if m.WebSocketClients, err = meter.Int64UpDownCounter("websocket_clients",
		metric.WithDescription("Connected WebSocket clients")); err != nil {
		return nil, err
	}

	return &m, nil
}

func status(ok bool) attribute.KeyValue {
	if ok {
		return attribute.String("status", "success")
	}
	return attribute.String("status", "failure")
}

// WorkbookStats describes one normalization run for RecordWorkbookMetrics.
type WorkbookStats struct {
	Format   string
	Bytes    int64
	Sheets   int
	Records  int
	Duration time.Duration
	Err      error
}

// RecordWorkbookMetrics records the outcome of one upload.
func RecordWorkbookMetrics(ctx context.Context, m *BusinessMetrics, s WorkbookStats) {
	if m == nil {
		return
	}

	format := attribute.String("format", s.Format)
	attrs := metric.WithAttributes(format, status(s.Err == nil))

	m.WorkbooksProcessed.Add(ctx, 1, attrs)
	m.WorkbookBytes.Add(ctx, s.Bytes, metric.WithAttributes(format))
	m.ProcessingDuration.Record(ctx, s.Duration.Seconds(), attrs)

	if s.Err != nil {
		m.ParseFailures.Add(ctx, 1, metric.WithAttributes(format))
		return
	}
	m.SheetsProcessed.Add(ctx, int64(s.Sheets), metric.WithAttributes(format))
	m.RecordsExtracted.Add(ctx, int64(s.Records), metric.WithAttributes(format))
}

// RecordSubmissionMetrics records one backend submission.
func RecordSubmissionMetrics(ctx context.Context, m *BusinessMetrics, statusCode int, duration time.Duration, ok bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(status(ok), attribute.Int("http.status_code", statusCode))
	m.SubmissionsTotal.Add(ctx, 1, attrs)
	m.SubmissionDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordSystemError counts an unexpected internal error by kind.
func RecordSystemError(ctx context.Context, m *BusinessMetrics, kind string) {
	if m == nil {
		return
	}
	m.SystemErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", kind)))
}
