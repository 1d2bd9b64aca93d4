package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"eduboard/internal/config"
	apierrors "eduboard/internal/errors"
	"eduboard/internal/exporter"
	mw "eduboard/internal/middleware"
	"eduboard/internal/services"
	"eduboard/internal/validation"
	api "eduboard/pkg/contracts/api/v1"
	"eduboard/pkg/contracts/domain"
)

// multipartMemory is the part of a multipart form kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

type exportFunc func(io.Writer, domain.EducationDataset) error

// DashboardHandler handles workbook and education data requests
type DashboardHandler struct {
	service      DashboardServiceInterface
	upload       config.UploadConfig
	validation   *mw.ValidationMiddleware
	csv          *exporter.CSVWriter
	xlsx         *exporter.XLSXWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, upload config.UploadConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if upload.FieldName == "" {
		upload.FieldName = config.DefaultUploadField
	}
	if upload.MaxBytes <= 0 {
		upload.MaxBytes = config.DefaultMaxUploadBytes
	}
	return &DashboardHandler{
		service:      service,
		upload:       upload,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		csv:          exporter.NewCSVWriter(exporter.WithBOM()),
		xlsx:         exporter.NewXLSXWriter(),
		logger:       logger.With(slog.String("handler", "dashboard")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.NotFound(h.errorHandler.NotFound)
	r.MethodNotAllowed(h.errorHandler.MethodNotAllowed)

	r.Post("/workbooks", h.UploadWorkbook)
	r.Route("/workbooks/current", func(r chi.Router) {
		r.Get("/", h.GetCurrent)
		r.Get("/sheets", h.GetSheets)
		r.Get("/sheets/{name}", h.GetSheet)
		r.Get("/education", h.GetEducation)
		r.Get("/education.csv", h.DownloadEducationCSV)
		r.Get("/education.xlsx", h.DownloadEducationXLSX)
		r.Get("/summary", h.GetSummary)
		r.Get("/export", h.GetExport)
		r.Post("/submit", h.Submit)
	})
	r.Get("/education/sample", h.GetSample)

	return r
}

// UploadWorkbook handles POST /api/workbooks
func (h *DashboardHandler) UploadWorkbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.logger.WarnContext(ctx, "upload rejected",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
		if isTooLarge(err) {
			h.errorHandler.HandleError(w, r, apierrors.UploadTooLargeError(validation.FormatFileSize(h.upload.MaxBytes)))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(h.upload.FieldName)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(h.upload.FieldName, "no file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "workbook upload received",
		slog.String("request_id", reqID),
		slog.String("file_name", header.Filename),
		slog.Int64("size", header.Size))

	up, err := h.service.LoadUpload(ctx, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, api.SuccessResponse{
		Status: "success",
		Data: api.UploadResponse{
			Upload:        up.Info,
			EducationData: up.Result.Education,
		},
	})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// GetCurrent handles GET /api/workbooks/current
func (h *DashboardHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	up, err := h.service.Current()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: up.Info})
}

// GetSheets handles GET /api/workbooks/current/sheets
func (h *DashboardHandler) GetSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.service.Sheets()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	query := api.SheetQuery{WithRecordsOnly: r.URL.Query().Get("with_records_only") == "true"}
	if query.WithRecordsOnly {
		filtered := make([]domain.SheetInfo, 0, len(sheets))
		for _, s := range sheets {
			if s.RecordCount > 0 {
				filtered = append(filtered, s)
			}
		}
		sheets = filtered
	}

	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: sheets, Count: len(sheets)})
}

// GetSheet handles GET /api/workbooks/current/sheets/{name}
func (h *DashboardHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	h.logger.DebugContext(r.Context(), "fetching sheet",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("sheet", name))

	sheet, err := h.service.Sheet(name)
	if err != nil {
		if errors.Is(err, services.ErrSheetNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.SheetNotFoundError(name))
			return
		}
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: sheet, Count: len(sheet.Records)})
}

// GetEducation handles GET /api/workbooks/current/education
func (h *DashboardHandler) GetEducation(w http.ResponseWriter, r *http.Request) {
	ds, err := h.service.Education()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: ds, Count: len(ds)})
}

// DownloadEducationCSV handles GET /api/workbooks/current/education.csv
func (h *DashboardHandler) DownloadEducationCSV(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "text/csv; charset=utf-8", ".csv", h.csv.WriteEducation)
}

// DownloadEducationXLSX handles GET /api/workbooks/current/education.xlsx
func (h *DashboardHandler) DownloadEducationXLSX(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, validation.MIMEXLSX, ".xlsx", h.xlsx.WriteEducation)
}

// download renders the dataset into a buffer first so that a failed export
// still gets a problem response.
func (h *DashboardHandler) download(w http.ResponseWriter, r *http.Request, contentType, ext string, write exportFunc) {
	up, err := h.service.Current()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	ds, err := h.service.Education()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, ds); err != nil {
		h.logger.ErrorContext(r.Context(), "education export failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("format", ext),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrExportFailed)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(up.Info.FileName, ext)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// downloadName derives "<base>_education<ext>" from the uploaded file name.
func downloadName(fileName, ext string) string {
	base := fileName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, base)
	if base == "" {
		return "education" + ext
	}
	return base + "_education" + ext
}

// GetSummary handles GET /api/workbooks/current/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: summary})
}

// GetExport handles GET /api/workbooks/current/export
func (h *DashboardHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Export()
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}
	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: export})
}

// Submit handles POST /api/workbooks/current/submit
func (h *DashboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SubmitRequest
	if err := h.validation.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Submit(ctx, services.SubmitOptions{FileName: req.FileName, Type: req.Type})
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(ctx, "submission finished",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.Bool("success", res.Success),
		slog.Int("status_code", res.StatusCode),
		slog.String("file_name", res.FileName))

	if !res.Success {
		h.errorHandler.HandleError(w, r, apierrors.SubmissionFailedError(res.StatusCode, res.Message))
		return
	}

	render.JSON(w, r, api.SuccessResponse{
		Status: "success",
		Data: api.SubmitResponse{
			Success:    res.Success,
			StatusCode: res.StatusCode,
			Message:    res.Message,
			FileName:   res.FileName,
			Records:    res.Records,
		},
	})
}

// GetSample handles GET /api/education/sample
func (h *DashboardHandler) GetSample(w http.ResponseWriter, r *http.Request) {
	overview := services.SampleDataset()
	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: overview, Count: len(overview.Data)})
}

// mapServiceError translates service sentinels into API errors. Anything
// else, parse failures included, is left to the error handler.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidUpload):
		return apierrors.NewWithDetails(apierrors.ErrInvalidUpload.StatusCode, apierrors.CodeInvalidUpload,
			apierrors.ErrInvalidUpload.Message, err.Error())
	case errors.Is(err, services.ErrNoWorkbookLoaded):
		return apierrors.ErrNoWorkbookLoaded
	case errors.Is(err, services.ErrNoEducationData):
		return apierrors.ErrNoEducationData
	case errors.Is(err, services.ErrSubmissionDisabled):
		return apierrors.ErrBackendDisabled
	default:
		return err
	}
}
