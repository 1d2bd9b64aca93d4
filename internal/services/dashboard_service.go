package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"eduboard/internal/infrastructure"
	"eduboard/internal/spreadsheet"
	"eduboard/internal/submission"
	"eduboard/internal/validation"
	"eduboard/pkg/contracts/domain"
	"eduboard/pkg/contracts/events"
)

// Upload is one processed workbook. It is immutable once stored.
type Upload struct {
	Info   domain.UploadInfo
	Result *spreadsheet.Result
}

// SubmitOptions overrides the envelope of a submission.
type SubmitOptions struct {
	FileName string
	Type     string
}

// SubmitResult is the outcome of a submission attempt. Backend failures are
// reported here rather than as an error.
type SubmitResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message,omitempty"`
	FileName   string `json:"file_name"`
	Records    int    `json:"records"`
}

// DashboardService holds the latest upload and derives every view from it.
type DashboardService struct {
	mu      sync.RWMutex
	current *Upload

	validator       *validation.FileValidator
	backend         BackendClient
	hub             WebSocketHub
	metrics         *infrastructure.BusinessMetrics
	defaultFileName string
	logger          *slog.Logger
	now             func() time.Time
}

// DashboardOption configures a DashboardService.
type DashboardOption func(*DashboardService)

// WithBackend enables submissions through client.
func WithBackend(client BackendClient) DashboardOption {
	return func(s *DashboardService) { s.backend = client }
}

// WithWebSocketHub publishes processing and submission events on hub.
func WithWebSocketHub(hub WebSocketHub) DashboardOption {
	return func(s *DashboardService) { s.hub = hub }
}

// WithBusinessMetrics records workbook metrics on m.
func WithBusinessMetrics(m *infrastructure.BusinessMetrics) DashboardOption {
	return func(s *DashboardService) { s.metrics = m }
}

// WithDefaultFileName sets the name submitted when neither the caller nor
// the upload provides one.
func WithDefaultFileName(name string) DashboardOption {
	return func(s *DashboardService) { s.defaultFileName = name }
}

// WithServiceClock overrides the time source.
func WithServiceClock(now func() time.Time) DashboardOption {
	return func(s *DashboardService) { s.now = now }
}

// NewDashboardService creates the service. Without WithBackend, Submit
// returns ErrSubmissionDisabled.
func NewDashboardService(logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		validator:       validation.NewFileValidator(logger),
		defaultFileName: "education_data.xlsx",
		logger:          logger.With(slog.String("component", "dashboard_service")),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses and normalizes a workbook and makes it the current upload.
func (s *DashboardService) Load(ctx context.Context, fileName string, data []byte) (*Upload, error) {
	return s.LoadUpload(ctx, fileName, "", data)
}

// LoadUpload is Load with the content type declared by the client, which
// admits files whose name lacks a spreadsheet extension.
func (s *DashboardService) LoadUpload(ctx context.Context, fileName, contentType string, data []byte) (*Upload, error) {
	if err := s.validator.ValidateUpload(fileName, contentType); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}

	start := time.Now()
	res, err := spreadsheet.Process(data)
	stats := infrastructure.WorkbookStats{
		Format:   spreadsheet.DetectFormat(data),
		Bytes:    int64(len(data)),
		Duration: time.Since(start),
		Err:      err,
	}
	if res != nil {
		stats.Sheets = len(res.Workbook.SheetNames)
		stats.Records = res.Summary.ProcessedRowCount
	}
	infrastructure.RecordWorkbookMetrics(ctx, s.metrics, stats)

	if err != nil {
		s.logger.WarnContext(ctx, "workbook rejected",
			slog.String("file_name", fileName),
			slog.Int("size", len(data)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to process %s: %w", fileName, err)
	}

	upload := &Upload{
		Info: domain.UploadInfo{
			ID:           uuid.New().String(),
			FileName:     fileName,
			Size:         int64(len(data)),
			HumanSize:    validation.FormatFileSize(int64(len(data))),
			UploadedAt:   s.now().UTC(),
			Sheets:       res.SheetInfos(),
			HasEducation: len(res.Education) > 0,
			Summary:      res.Summary,
		},
		Result: res,
	}

	s.mu.Lock()
	s.current = upload
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "workbook processed",
		slog.String("upload_id", upload.Info.ID),
		slog.String("file_name", fileName),
		slog.Int("sheets", res.Summary.SheetCount),
		slog.Int("total_rows", res.Summary.TotalRows),
		slog.Int("processed_rows", res.Summary.ProcessedRowCount),
		slog.Int("education_rows", len(res.Education)),
		slog.Duration("duration", stats.Duration))

	s.publish(ctx, events.MessageTypeWorkbookProcessed, events.WorkbookProcessedEvent{
		UploadID:      upload.Info.ID,
		FileName:      fileName,
		SheetNames:    append([]string{}, res.Workbook.SheetNames...),
		ProcessedRows: res.Summary.ProcessedRowCount,
		EducationRows: len(res.Education),
		Succeeded:     res.Summary.Succeeded,
	})
	return upload, nil
}

func (s *DashboardService) publish(ctx context.Context, msgType events.MessageType, data interface{}) {
	if s.hub != nil {
		s.hub.Broadcast(ctx, msgType, data)
	}
}

// Current returns the latest upload.
func (s *DashboardService) Current() (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoWorkbookLoaded
	}
	return s.current, nil
}

// Sheets lists the processed sheets of the current upload.
func (s *DashboardService) Sheets() ([]domain.SheetInfo, error) {
	up, err := s.Current()
	if err != nil {
		return nil, err
	}
	return up.Info.Sheets, nil
}

// Sheet returns one processed sheet of the current upload.
func (s *DashboardService) Sheet(name string) (spreadsheet.ProcessedSheet, error) {
	up, err := s.Current()
	if err != nil {
		return spreadsheet.ProcessedSheet{}, err
	}
	sheet, ok := up.Result.Processed.Get(name)
	if !ok {
		return spreadsheet.ProcessedSheet{}, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return sheet, nil
}

// Education returns the dropout dataset of the current upload.
func (s *DashboardService) Education() (domain.EducationDataset, error) {
	up, err := s.Current()
	if err != nil {
		return nil, err
	}
	if len(up.Result.Education) == 0 {
		return nil, ErrNoEducationData
	}
	return up.Result.Education, nil
}

// Summary returns the processing summary of the current upload.
func (s *DashboardService) Summary() (domain.ProcessingSummary, error) {
	up, err := s.Current()
	if err != nil {
		return domain.ProcessingSummary{}, err
	}
	return up.Result.Summary, nil
}

// Export bundles everything derived from the current upload.
func (s *DashboardService) Export() (spreadsheet.Export, error) {
	up, err := s.Current()
	if err != nil {
		return spreadsheet.Export{}, err
	}
	return spreadsheet.BuildExport(up.Result.Workbook, up.Result.Processed, s.now()), nil
}

// Submit forwards the current dataset to the remote backend. The returned
// error covers missing preconditions only; a backend that refuses or cannot
// be reached yields a result with Success false.
func (s *DashboardService) Submit(ctx context.Context, opts SubmitOptions) (SubmitResult, error) {
	if s.backend == nil {
		return SubmitResult{}, ErrSubmissionDisabled
	}
	up, err := s.Current()
	if err != nil {
		return SubmitResult{}, err
	}
	dataset := up.Result.Education
	if len(dataset) == 0 {
		return SubmitResult{}, ErrNoEducationData
	}

	fileName := opts.FileName
	if fileName == "" {
		fileName = up.Info.FileName
	}
	if fileName == "" {
		fileName = s.defaultFileName
	}

	env := s.backend.NewEnvelope(fileName, dataset)
	if opts.Type != "" {
		env.Metadata.Type = opts.Type
	}

	result := SubmitResult{FileName: fileName, Records: len(dataset)}
	res, err := s.backend.Submit(ctx, env)
	var se *submission.StatusError
	switch {
	case err == nil:
		result.Success = true
		result.StatusCode = res.StatusCode
		result.Message = res.Message
		if result.Message == "" {
			result.Message = "data submitted"
		}
	case errors.As(err, &se):
		result.StatusCode = se.StatusCode
		result.Message = se.Message
		if result.Message == "" {
			result.Message = err.Error()
		}
	default:
		result.Message = err.Error()
	}

	s.publish(ctx, events.MessageTypeWorkbookSubmitted, events.WorkbookSubmittedEvent{
		UploadID:   up.Info.ID,
		FileName:   fileName,
		Success:    result.Success,
		StatusCode: result.StatusCode,
		Message:    result.Message,
	})
	return result, nil
}

// SubmissionEnabled reports whether a backend client is configured.
func (s *DashboardService) SubmissionEnabled() bool {
	return s.backend != nil
}
