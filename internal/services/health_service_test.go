package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eduboard/internal/shared/testutil"
	"eduboard/pkg/contracts"
	"eduboard/pkg/contracts/events"
)

func TestHealthService_ReadinessCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("backend reachable", func(t *testing.T) {
		backend := new(MockBackendClient)
		backend.On("HealthCheck", mock.Anything).Return(nil).Once()
		logger, _ := testutil.NewTestLogger(t)
		hs := NewHealthService(NewDashboardService(logger), backend, stubCounter(2), logger)

		status := hs.ReadinessCheck(ctx)

		assert.Equal(t, StatusReady, status.Status)
		assert.Equal(t, contracts.Version, status.Version)
		assert.Equal(t, StatusReady, status.Services["backend"].Status)
		assert.Equal(t, "2 clients connected", status.Services["websocket"].Message)
		assert.Equal(t, "no workbook loaded", status.Services["normalizer"].Message)
		backend.AssertExpectations(t)
	})

	t.Run("backend down does not block readiness", func(t *testing.T) {
		backend := new(MockBackendClient)
		backend.On("HealthCheck", mock.Anything).Return(errors.New("backend not available: connection refused"))
		logger, _ := testutil.NewTestLogger(t)
		hs := NewHealthService(NewDashboardService(logger), backend, nil, logger)

		status := hs.ReadinessCheck(ctx)

		assert.Equal(t, StatusReady, status.Status)
		assert.Equal(t, StatusUnavailable, status.Services["backend"].Status)
		assert.Contains(t, status.Services["backend"].Message, "connection refused")
		assert.Equal(t, StatusDisabled, status.Services["websocket"].Status)
	})

	t.Run("submission disabled", func(t *testing.T) {
		hs := NewHealthService(NewDashboardService(nil), nil, nil, nil)
		assert.Equal(t, StatusDisabled, hs.ReadinessCheck(ctx).Services["backend"].Status)
	})

	t.Run("missing dashboard is not ready", func(t *testing.T) {
		logger, logs := testutil.NewTestLogger(t)
		hs := NewHealthService(nil, nil, nil, logger)

		status := hs.ReadinessCheck(ctx)

		assert.Equal(t, StatusNotReady, status.Status)
		testutil.AssertLogged(t, logs, slog.LevelWarn, "component not ready")
	})

	t.Run("reports the loaded workbook", func(t *testing.T) {
		hub := new(MockWebSocketHub)
		hub.On("Broadcast", mock.Anything, events.MessageTypeWorkbookProcessed, mock.Anything)
		dashboard := NewDashboardService(nil, WithWebSocketHub(hub))
		_, err := dashboard.Load(ctx, "td.xlsx", testutil.WorkbookBytes(t, testutil.DropoutSheet("TD")))
		require.NoError(t, err)

		hs := NewHealthService(dashboard, nil, nil, nil)
		assert.Equal(t, "serving td.xlsx", hs.ReadinessCheck(ctx).Services["normalizer"].Message)
	})
}

func TestHealthService_Probes(t *testing.T) {
	hs := NewHealthService(NewDashboardService(nil), nil, nil, nil)
	ctx := context.Background()

	assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

	live := hs.LivenessCheck(ctx)
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	v := hs.Version()
	assert.Equal(t, contracts.Version, v.Version)
	assert.Equal(t, contracts.APIVersion, v.APIVersion)
	assert.GreaterOrEqual(t, v.UptimeSeconds, 0.0)
}
