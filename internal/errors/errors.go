package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes shared between the API errors and their problem types.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidUpload      = "INVALID_UPLOAD"
	CodeNotFound           = "NOT_FOUND"
	CodeNoWorkbookLoaded   = "NO_WORKBOOK_LOADED"
	CodeSheetNotFound      = "SHEET_NOT_FOUND"
	CodeNoEducationData    = "NO_EDUCATION_DATA"
	CodeUploadTooLarge     = "UPLOAD_TOO_LARGE"
	CodeParseFailed        = "PARSE_FAILED"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeExportFailed       = "EXPORT_FAILED"
	CodeSubmissionFailed   = "SUBMISSION_FAILED"
	CodeBackendDisabled    = "BACKEND_DISABLED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined error types for common scenarios
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrInvalidUpload    = New(http.StatusBadRequest, CodeInvalidUpload, "Only Excel files (.xlsx, .xls) are accepted")

	// 404 Not Found
	ErrNotFound         = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrNoWorkbookLoaded = New(http.StatusNotFound, CodeNoWorkbookLoaded, "No workbook has been uploaded yet")
	ErrNoEducationData  = New(http.StatusNotFound, CodeNoEducationData, "The workbook has no dropout sheet with data")

	// 413 Payload Too Large
	ErrUploadTooLarge = New(http.StatusRequestEntityTooLarge, CodeUploadTooLarge, "Uploaded file exceeds the size limit")

	// 422 Unprocessable Entity
	ErrParseFailed = New(http.StatusUnprocessableEntity, CodeParseFailed, "The file could not be read as a spreadsheet")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, CodeInternal, "Internal server error")
	ErrExportFailed   = New(http.StatusInternalServerError, CodeExportFailed, "Export could not be generated")

	// 502 Bad Gateway
	ErrSubmissionFailed = New(http.StatusBadGateway, CodeSubmissionFailed, "The backend rejected the submission")

	// 503 Service Unavailable
	ErrBackendDisabled    = New(http.StatusServiceUnavailable, CodeBackendDisabled, "Backend submission is disabled")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error with details
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error with field details
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a not found error with details
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// SheetNotFoundError reports a sheet name missing from the current workbook.
func SheetNotFoundError(name string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeSheetNotFound, fmt.Sprintf("sheet %q not found", name), name)
}

// ParseFailedError carries the reader error as detail.
func ParseFailedError(err error) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeParseFailed, "The file could not be read as a spreadsheet", err.Error())
}

// UploadTooLargeError reports the configured limit.
func UploadTooLargeError(limit string) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodeUploadTooLarge,
		fmt.Sprintf("Uploaded file exceeds the %s limit", limit), limit)
}

// SubmissionFailedError wraps the backend status and message.
func SubmissionFailedError(statusCode int, message string) *APIError {
	return NewWithDetails(http.StatusBadGateway, CodeSubmissionFailed, "The backend rejected the submission", map[string]interface{}{
		"backend_status":  statusCode,
		"backend_message": message,
	})
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}

// NewValidationError creates a simple validation error
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// NewInternalError creates a simple internal server error
func NewInternalError(message string) *APIError {
	return New(http.StatusInternalServerError, CodeInternal, message)
}
