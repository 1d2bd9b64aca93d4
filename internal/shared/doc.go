// Package shared groups helpers used by more than one package. Its testutil
// subpackage builds in-memory workbooks and records slog output for tests.
package shared
