// Package infrastructure wires the process-wide logging and telemetry:
// the slog logger with trace correlation, the OpenTelemetry providers and
// the business metrics recorded by the services.
package infrastructure
