// Package http provides the HTTP handlers of the dashboard API.
//
// Handlers are thin adapters: they decode the request, call a service
// through a small interface and render the result. Each handler exposes a
// Routes method returning a chi.Router that the application mounts under
// /api.
//
// # Responses
//
// Successful JSON responses share one envelope:
//
//	{
//	    "status": "success",
//	    "data": {...},
//	    "count": 2
//	}
//
// Errors are rendered as RFC 7807 Problem Details by the error handler in
// internal/errors:
//
//	{
//	    "type": "/errors/workbook/not-loaded",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "No workbook has been uploaded yet",
//	    "instance": "/api/workbooks/current",
//	    "error_code": "NO_WORKBOOK_LOADED"
//	}
//
// Downloads (education.csv, education.xlsx) bypass the envelope and are
// written with a Content-Disposition attachment header.
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces.
package http
