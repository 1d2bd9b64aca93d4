package submission

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduboard/internal/config"
	"eduboard/internal/shared/testutil"
	"eduboard/pkg/contracts/domain"
)

var fixedNow = time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default().Backend
	cfg.BaseURL = srv.URL + "/api"
	return NewClient(cfg, logger, WithClock(func() time.Time { return fixedNow }))
}

func TestClient_Submit(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/upload-data", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"stored","id":7}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	data := domain.EducationDataset{
		{Category: "Universitario", Series: map[string]float64{"2018": 8.79}},
	}

	res, err := c.Submit(context.Background(), c.NewEnvelope("td.xlsx", data))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "stored", res.Message)
	assert.JSONEq(t, `{"message":"stored","id":7}`, string(res.Body))

	assert.Equal(t, "td.xlsx", got["fileName"])
	assert.Equal(t, "2024-05-02T10:30:00Z", got["timestamp"])
	assert.Equal(t, map[string]interface{}{"source": "dashboard", "type": "education_statistics"}, got["metadata"])
	assert.Equal(t, []interface{}{map[string]interface{}{"category": "Universitario", "2018": 8.79}}, got["data"])
}

func TestClient_SubmitFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message field", http.StatusInternalServerError, `{"message":"database down"}`, "database down"},
		{"fastapi detail", http.StatusUnprocessableEntity, `{"detail":"fileName required"}`, "fileName required"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, "field required"},
		{"plain text", http.StatusBadGateway, "upstream timeout", "upstream timeout"},
		{"empty", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv)
			_, err := c.Submit(context.Background(), c.NewEnvelope("x.xlsx", nil))

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, "/upload-data", se.Path)
		})
	}
}

func TestClient_SubmitUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := newTestClient(t, srv)
	srv.Close()

	_, err := c.Submit(context.Background(), c.NewEnvelope("x.xlsx", nil))
	require.Error(t, err)

	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClient_UploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload-excel", r.URL.Path)
		f, hdr, err := r.FormFile(UploadField)
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)

		assert.Equal(t, "td.xlsx", hdr.Filename)
		assert.Equal(t, "PK-bytes", string(content))
		w.Write([]byte(`{"message":"uploaded"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	res, err := c.UploadFile(context.Background(), "td.xlsx", strings.NewReader("PK-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploaded", res.Message)
}

func TestClient_ProcessData(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/process-data", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.ProcessData(context.Background(), "td.xlsx", map[string]int{"rows": 2})
	require.NoError(t, err)

	assert.Equal(t, "td.xlsx", got["file_name"])
	assert.Equal(t, map[string]interface{}{"source": "dashboard", "version": "1.0"}, got["metadata"])
}

func TestClient_ReadEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/api/files":
			w.Write([]byte(`{"files":["a.xlsx"]}`))
		case "/api/statistics":
			w.Write([]byte(`{"total_files":1}`))
		case "/api/health":
			w.Write([]byte(`{"status":"ok"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	ctx := context.Background()

	files, err := c.ProcessedFiles(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"files":["a.xlsx"]}`, string(files.Body))

	stats, err := c.Statistics(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_files":1}`, string(stats.Body))

	assert.NoError(t, c.HealthCheck(ctx))
}

func TestClient_HealthCheckDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend not available")
}
