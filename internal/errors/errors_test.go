package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"invalid upload", ErrInvalidUpload, http.StatusBadRequest, CodeInvalidUpload},
		{"no workbook", ErrNoWorkbookLoaded, http.StatusNotFound, CodeNoWorkbookLoaded},
		{"no education data", ErrNoEducationData, http.StatusNotFound, CodeNoEducationData},
		{"too large", ErrUploadTooLarge, http.StatusRequestEntityTooLarge, CodeUploadTooLarge},
		{"parse failed", ErrParseFailed, http.StatusUnprocessableEntity, CodeParseFailed},
		{"submission failed", ErrSubmissionFailed, http.StatusBadGateway, CodeSubmissionFailed},
		{"backend disabled", ErrBackendDisabled, http.StatusServiceUnavailable, CodeBackendDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestDetailConstructors(t *testing.T) {
	t.Run("sheet not found", func(t *testing.T) {
		err := SheetNotFoundError("Hoja 9")
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.Equal(t, CodeSheetNotFound, err.ErrorCode)
		assert.Contains(t, err.Message, `"Hoja 9"`)
	})

	t.Run("submission failed keeps backend status", func(t *testing.T) {
		err := SubmissionFailedError(500, "boom")
		details, ok := err.Details.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, 500, details["backend_status"])
		assert.Equal(t, "boom", details["backend_message"])
	})

	t.Run("validation", func(t *testing.T) {
		err := ErrValidation("file_name", "too long")
		assert.Equal(t, ValidationError{Field: "file_name", Message: "too long"}, err.Details)
	})
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrNoWorkbookLoaded)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, CodeNoWorkbookLoaded, body.Error.ErrorCode)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeSheetNotFound, "Not Found", "missing", "/api/workbooks/current/sheets/x").
		WithExtension("trace_id", "abc")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "/errors/workbook/sheet-not-found",
		"title": "Not Found",
		"status": 404,
		"detail": "missing",
		"instance": "/api/workbooks/current/sheets/x",
		"trace_id": "abc"
	}`, string(raw))
}

func TestProblemDetails_ExtensionsCannotOverrideStatus(t *testing.T) {
	pd := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "").
		WithExtension("status", 999)

	raw, err := json.Marshal(pd)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"/errors/validation","title":"Bad Request","status":400}`, string(raw))
}
