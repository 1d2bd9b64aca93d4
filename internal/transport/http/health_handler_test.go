package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"eduboard/internal/services"
	"eduboard/internal/shared/testutil"
	"eduboard/pkg/contracts"
)

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called().Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() services.VersionInfo {
	return m.Called().Get(0).(services.VersionInfo)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMock      func(*MockHealthService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "health",
			path: "/health",
			setupMock: func(m *MockHealthService) {
				m.On("HealthCheck").Return(services.HealthStatus{Status: "ok", Version: contracts.Version})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"ok"`},
		},
		{
			name: "ready",
			path: "/health/ready",
			setupMock: func(m *MockHealthService) {
				m.On("ReadinessCheck").Return(services.HealthStatus{
					Status: services.StatusReady,
					Services: map[string]services.ServiceHealth{
						"backend": {Status: services.StatusUnavailable, Message: "connection refused"},
					},
				})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"status":"ready"`, `"connection refused"`},
		},
		{
			name: "not ready",
			path: "/health/ready",
			setupMock: func(m *MockHealthService) {
				m.On("ReadinessCheck").Return(services.HealthStatus{Status: services.StatusNotReady})
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   []string{`"status":"not_ready"`},
		},
		{
			name: "live",
			path: "/health/live",
			setupMock: func(m *MockHealthService) {
				m.On("LivenessCheck").Return(services.HealthStatus{
					Status:  "alive",
					Runtime: map[string]interface{}{"goroutines": 4},
				})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"goroutines":4`},
		},
		{
			name: "version",
			path: "/version",
			setupMock: func(m *MockHealthService) {
				m.On("Version").Return(services.VersionInfo{VersionInfo: contracts.GetVersionInfo()})
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"version":"` + contracts.Version + `"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockHealthService)
			tt.setupMock(mockService)
			logger, _ := testutil.NewTestLogger(t)
			handler := chi.NewRouter()
			NewHealthHandler(mockService, logger).RegisterRoutes(handler)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), want)
			}
			mockService.AssertExpectations(t)
		})
	}
}
