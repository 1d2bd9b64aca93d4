package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduboard/internal/config"
	"eduboard/internal/infrastructure"
	"eduboard/internal/shared/testutil"
)

func TestOTelMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		Environment:   "test",
		EnableTracing: true,
		EnableMetrics: true,
		TraceExporter: "none",
		SampleRatio:   1,
	}, logger)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	mw, err := NewOTelMiddleware(providers)
	require.NoError(t, err)

	var traceID string
	r := chi.NewRouter()
	r.Use(mw.Handler)
	r.Get("/workbooks/current/sheets/{name}", func(w http.ResponseWriter, r *http.Request) {
		traceID = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workbooks/current/sheets/Hoja1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, traceID, 32)

	metrics := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, metrics.Body.String(), "http_requests_total")
}

func TestBusinessMetricsFromContext(t *testing.T) {
	assert.Nil(t, GetBusinessMetricsFromContext(context.Background()))

	bm := &infrastructure.BusinessMetrics{}
	var got *infrastructure.BusinessMetrics
	h := BusinessMetricsMiddleware(bm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetBusinessMetricsFromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Same(t, bm, got)
}

func TestGetRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", GetRealIP(req))

	req.Header.Set("X-Real-IP", "192.168.1.9")
	assert.Equal(t, "192.168.1.9", GetRealIP(req))
}
