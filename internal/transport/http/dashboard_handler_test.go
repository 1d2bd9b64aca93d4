package http

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eduboard/internal/config"
	apierrors "eduboard/internal/errors"
	"eduboard/internal/services"
	"eduboard/internal/shared/testutil"
	"eduboard/internal/spreadsheet"
	"eduboard/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) LoadUpload(ctx context.Context, fileName, contentType string, data []byte) (*services.Upload, error) {
	args := m.Called(fileName, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Upload), args.Error(1)
}

func (m *MockDashboardService) Current() (*services.Upload, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Upload), args.Error(1)
}

func (m *MockDashboardService) Sheets() ([]domain.SheetInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SheetInfo), args.Error(1)
}

func (m *MockDashboardService) Sheet(name string) (spreadsheet.ProcessedSheet, error) {
	args := m.Called(name)
	return args.Get(0).(spreadsheet.ProcessedSheet), args.Error(1)
}

func (m *MockDashboardService) Education() (domain.EducationDataset, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.EducationDataset), args.Error(1)
}

func (m *MockDashboardService) Summary() (domain.ProcessingSummary, error) {
	args := m.Called()
	return args.Get(0).(domain.ProcessingSummary), args.Error(1)
}

func (m *MockDashboardService) Export() (spreadsheet.Export, error) {
	args := m.Called()
	return args.Get(0).(spreadsheet.Export), args.Error(1)
}

func (m *MockDashboardService) Submit(ctx context.Context, opts services.SubmitOptions) (services.SubmitResult, error) {
	args := m.Called(opts)
	return args.Get(0).(services.SubmitResult), args.Error(1)
}

var handlerNow = time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)

func dropoutDataset() domain.EducationDataset {
	return domain.EducationDataset{
		{Category: "Universitario", Series: map[string]float64{"2018": 8.79, "2019": 8.45}},
		{Category: "Técnico Profesional", Series: map[string]float64{"2018": 17.41, "2019": 16.89}},
	}
}

func testUpload() *services.Upload {
	ds := dropoutDataset()
	return &services.Upload{
		Info: domain.UploadInfo{
			ID:           "upload-1",
			FileName:     "desercion.xlsx",
			Size:         2048,
			HumanSize:    "2.0 KB",
			UploadedAt:   handlerNow,
			HasEducation: true,
			Sheets: []domain.SheetInfo{
				{Name: "Resumen", RowCount: 2, RecordCount: 0},
				{Name: "Deserción Técnica", RowCount: 5, RecordCount: 2},
			},
		},
		Result: &spreadsheet.Result{Education: ds},
	}
}

func newTestDashboardHandler(t *testing.T, svc *MockDashboardService, upload config.UploadConfig) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDashboardHandler(svc, upload, logger, apierrors.NewErrorHandler(logger, false)).Routes()
}

func multipartBody(t *testing.T, field, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestDashboardHandler_UploadWorkbook(t *testing.T) {
	payload := []byte("PK\x03\x04 workbook bytes")

	tests := []struct {
		name           string
		field          string
		fileName       string
		data           []byte
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name:     "successful upload",
			field:    "excel_file",
			fileName: "desercion.xlsx",
			data:     payload,
			setupMock: func(m *MockDashboardService) {
				m.On("LoadUpload", "desercion.xlsx", "application/octet-stream", payload).Return(testUpload(), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   []string{`"status":"success"`, `"id":"upload-1"`, `"category":"Universitario"`, `"2018":8.79`},
		},
		{
			name:     "rejected file type",
			field:    "excel_file",
			fileName: "notes.txt",
			data:     payload,
			setupMock: func(m *MockDashboardService) {
				m.On("LoadUpload", "notes.txt", mock.Anything, mock.Anything).
					Return(nil, errors.Join(services.ErrInvalidUpload, errors.New("unsupported file type")))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"INVALID_UPLOAD"`, `unsupported file type`},
		},
		{
			name:     "unreadable workbook",
			field:    "excel_file",
			fileName: "broken.xlsx",
			data:     payload,
			setupMock: func(m *MockDashboardService) {
				m.On("LoadUpload", "broken.xlsx", mock.Anything, mock.Anything).
					Return(nil, &spreadsheet.ParseFailure{Format: "xlsx", Err: errors.New("zip: not a valid zip file")})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{`"PARSE_FAILED"`},
		},
		{
			name:           "missing file field",
			field:          "document",
			fileName:       "desercion.xlsx",
			data:           payload,
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"VALIDATION_FAILED"`, `excel_file`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDashboardService)
			tt.setupMock(mockService)
			handler := newTestDashboardHandler(t, mockService, config.Default().Upload)

			body, contentType := multipartBody(t, tt.field, tt.fileName, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/workbooks", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_UploadTooLarge(t *testing.T) {
	mockService := new(MockDashboardService)
	handler := newTestDashboardHandler(t, mockService, config.UploadConfig{MaxBytes: 512, FieldName: "excel_file"})

	body, contentType := multipartBody(t, "excel_file", "big.xlsx", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/workbooks", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"UPLOAD_TOO_LARGE"`)
	mockService.AssertNotCalled(t, "LoadUpload", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardHandler_UploadNotMultipart(t *testing.T) {
	mockService := new(MockDashboardService)
	handler := newTestDashboardHandler(t, mockService, config.Default().Upload)

	req := httptest.NewRequest(http.MethodPost, "/workbooks", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"INVALID_REQUEST"`)
}

func TestDashboardHandler_Views(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "current upload",
			path: "/workbooks/current",
			setupMock: func(m *MockDashboardService) {
				m.On("Current").Return(testUpload(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"file_name":"desercion.xlsx"`, `"has_education_data":true`},
		},
		{
			name: "nothing uploaded",
			path: "/workbooks/current",
			setupMock: func(m *MockDashboardService) {
				m.On("Current").Return(nil, services.ErrNoWorkbookLoaded)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{`"NO_WORKBOOK_LOADED"`, `/errors/workbook/not-loaded`},
		},
		{
			name: "sheet list",
			path: "/workbooks/current/sheets",
			setupMock: func(m *MockDashboardService) {
				m.On("Sheets").Return(testUpload().Info.Sheets, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"count":2`, `"name":"Resumen"`},
		},
		{
			name: "sheet list with records only",
			path: "/workbooks/current/sheets?with_records_only=true",
			setupMock: func(m *MockDashboardService) {
				m.On("Sheets").Return(testUpload().Info.Sheets, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"count":1`, `"name":"Deserción Técnica"`},
		},
		{
			name: "single sheet with escaped name",
			path: "/workbooks/current/sheets/Deserci%C3%B3n%20T%C3%A9cnica",
			setupMock: func(m *MockDashboardService) {
				m.On("Sheet", "Deserción Técnica").Return(spreadsheet.ProcessedSheet{
					Name:    "Deserción Técnica",
					Headers: []string{"Nivel de formación", "2018"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"headers":["Nivel de formación","2018"]`},
		},
		{
			name: "unknown sheet",
			path: "/workbooks/current/sheets/Matricula",
			setupMock: func(m *MockDashboardService) {
				m.On("Sheet", "Matricula").Return(spreadsheet.ProcessedSheet{},
					errors.Join(services.ErrSheetNotFound, errors.New(`"Matricula"`)))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{`"SHEET_NOT_FOUND"`, `Matricula`},
		},
		{
			name: "education dataset",
			path: "/workbooks/current/education",
			setupMock: func(m *MockDashboardService) {
				m.On("Education").Return(dropoutDataset(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"count":2`, `"category":"Técnico Profesional"`},
		},
		{
			name: "no dropout sheet",
			path: "/workbooks/current/education",
			setupMock: func(m *MockDashboardService) {
				m.On("Education").Return(nil, services.ErrNoEducationData)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{`"NO_EDUCATION_DATA"`},
		},
		{
			name: "summary",
			path: "/workbooks/current/summary",
			setupMock: func(m *MockDashboardService) {
				m.On("Summary").Return(domain.ProcessingSummary{SheetCount: 2, TotalRows: 7, ProcessedRowCount: 2, Succeeded: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"total_sheets":2`, `"processing_success":true`},
		},
		{
			name: "export bundle",
			path: "/workbooks/current/export",
			setupMock: func(m *MockDashboardService) {
				m.On("Export").Return(spreadsheet.Export{EducationData: dropoutDataset()}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"success"`, `"category":"Universitario"`},
		},
		{
			name: "internal error",
			path: "/workbooks/current/summary",
			setupMock: func(m *MockDashboardService) {
				m.On("Summary").Return(domain.ProcessingSummary{}, errors.New("disk on fire"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{`"Internal Server Error"`},
		},
		{
			name:           "sample dataset",
			path:           "/education/sample",
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"count":4`, `"category":"Especialización"`, `"category_averages"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDashboardService)
			tt.setupMock(mockService)
			handler := newTestDashboardHandler(t, mockService, config.Default().Upload)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_Downloads(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		mockService := new(MockDashboardService)
		mockService.On("Current").Return(testUpload(), nil)
		mockService.On("Education").Return(dropoutDataset(), nil)
		handler := newTestDashboardHandler(t, mockService, config.Default().Upload)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workbooks/current/education.csv", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="desercion_education.csv"`, rec.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
		assert.Contains(t, rec.Body.String(), "Universitario,8.79,8.45")
	})

	t.Run("xlsx", func(t *testing.T) {
		mockService := new(MockDashboardService)
		mockService.On("Current").Return(testUpload(), nil)
		mockService.On("Education").Return(dropoutDataset(), nil)
		handler := newTestDashboardHandler(t, mockService, config.Default().Upload)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workbooks/current/education.xlsx", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename="desercion_education.xlsx"`, rec.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
	})

	t.Run("no education data", func(t *testing.T) {
		mockService := new(MockDashboardService)
		mockService.On("Current").Return(testUpload(), nil)
		mockService.On("Education").Return(nil, services.ErrNoEducationData)
		handler := newTestDashboardHandler(t, mockService, config.Default().Upload)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workbooks/current/education.csv", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
	})
}

func TestDashboardHandler_Submit(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "successful submit without body",
			setupMock: func(m *MockDashboardService) {
				m.On("Submit", services.SubmitOptions{}).Return(services.SubmitResult{
					Success: true, StatusCode: 201, Message: "stored", FileName: "desercion.xlsx", Records: 2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"success":true`, `"records":2`, `"message":"stored"`},
		},
		{
			name: "overrides from body",
			body: `{"file_name":"otro.xlsx","type":"custom"}`,
			setupMock: func(m *MockDashboardService) {
				m.On("Submit", services.SubmitOptions{FileName: "otro.xlsx", Type: "custom"}).Return(services.SubmitResult{
					Success: true, StatusCode: 200, Message: "data submitted", FileName: "otro.xlsx", Records: 2,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"file_name":"otro.xlsx"`},
		},
		{
			name:           "invalid file name",
			body:           `{"file_name":"report.pdf"}`,
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"VALIDATION_FAILED"`, `file_name`},
		},
		{
			name:           "malformed body",
			body:           `{"file_name":`,
			setupMock:      func(m *MockDashboardService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"INVALID_REQUEST"`},
		},
		{
			name: "backend refused",
			setupMock: func(m *MockDashboardService) {
				m.On("Submit", services.SubmitOptions{}).Return(services.SubmitResult{
					StatusCode: 500, Message: "database down", FileName: "desercion.xlsx", Records: 2,
				}, nil)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   []string{`"SUBMISSION_FAILED"`, `"backend_status":500`, `"backend_message":"database down"`},
		},
		{
			name: "submission disabled",
			setupMock: func(m *MockDashboardService) {
				m.On("Submit", services.SubmitOptions{}).Return(services.SubmitResult{}, services.ErrSubmissionDisabled)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   []string{`"BACKEND_DISABLED"`},
		},
		{
			name: "nothing to submit",
			setupMock: func(m *MockDashboardService) {
				m.On("Submit", services.SubmitOptions{}).Return(services.SubmitResult{}, services.ErrNoEducationData)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{`"NO_EDUCATION_DATA"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockDashboardService)
			tt.setupMock(mockService)
			handler := newTestDashboardHandler(t, mockService, config.Default().Upload)

			req := httptest.NewRequest(http.MethodPost, "/workbooks/current/submit", strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "desercion_education.csv", downloadName("desercion.xlsx", ".csv"))
	assert.Equal(t, "export_education.xlsx", downloadName("export", ".xlsx"))
	assert.Equal(t, "education.csv", downloadName("", ".csv"))
	assert.Equal(t, "a_b_education.csv", downloadName(`a"b.xls`, ".csv"))
}
