// Package submission is the HTTP client of the remote analytics backend that
// receives processed education data. Every call is traced through otelhttp
// and bounded by the configured timeout.
package submission
