// Package app wires the dashboard server together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. The caller loads configuration and builds the logger
//	2. OpenTelemetry providers and business metrics are initialized
//	3. The WebSocket hub, the optional backend client and the services are created
//	4. The chi router is assembled with middleware and handlers
//	5. The HTTP server is configured
//
// # Routes
//
//	/api/...   JSON API, see internal/transport/http
//	/ws        event feed
//	/metrics   Prometheus exposition of the OpenTelemetry meters
//
// # Graceful Shutdown
//
// Run and Serve block until the context is cancelled or the listener fails.
// Shutdown drains in-flight requests, stops the hub (closing every client
// connection) and flushes the telemetry providers. The app never calls
// os.Exit; main decides the exit code.
package app
