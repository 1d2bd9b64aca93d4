// Package services implements the business logic between the HTTP handlers
// and the spreadsheet normalizer.
//
// DashboardService owns the most recent upload of the running instance. Each
// Load parses and normalizes a workbook and swaps it in whole, so readers
// see either the previous upload or the new one. Results are pushed to
// WebSocket clients and, on request, forwarded to the remote backend.
//
// HealthService reports liveness, readiness and version information,
// including whether the remote backend answers.
//
// Services return the sentinel errors of this package, or wrap the
// normalizer's *spreadsheet.ParseFailure, and leave the mapping to HTTP
// status codes to the transport layer.
package services
