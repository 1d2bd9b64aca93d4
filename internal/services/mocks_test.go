package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"eduboard/internal/submission"
	"eduboard/pkg/contracts/events"
)

type MockWebSocketHub struct {
	mock.Mock
}

func (m *MockWebSocketHub) Broadcast(ctx context.Context, msgType events.MessageType, data interface{}) {
	m.Called(ctx, msgType, data)
}

type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) NewEnvelope(fileName string, data interface{}) submission.Envelope {
	return submission.Envelope{
		FileName:  fileName,
		Data:      data,
		Timestamp: time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC),
		Metadata:  submission.Metadata{Source: "dashboard", Type: "education_statistics"},
	}
}

func (m *MockBackendClient) Submit(ctx context.Context, env submission.Envelope) (*submission.Result, error) {
	args := m.Called(ctx, env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*submission.Result), args.Error(1)
}

func (m *MockBackendClient) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type stubCounter int

func (s stubCounter) ClientCount() int { return int(s) }
