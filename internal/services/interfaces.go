package services

import (
	"context"

	"eduboard/internal/submission"
	"eduboard/pkg/contracts/events"
)

// WebSocketHub publishes dashboard events to connected clients.
type WebSocketHub interface {
	Broadcast(ctx context.Context, msgType events.MessageType, data interface{})
}

// BackendClient is the part of the submission client the services use.
type BackendClient interface {
	NewEnvelope(fileName string, data interface{}) submission.Envelope
	Submit(ctx context.Context, env submission.Envelope) (*submission.Result, error)
	HealthCheck(ctx context.Context) error
}

var _ BackendClient = (*submission.Client)(nil)
