package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, checks map[string]Check, metrics http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(accessLog(NewHandlers(checks, metrics, zap.NewNop()).Routes(), zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	code, body := get(t, srv.URL+"/health")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)
}

func TestReadyHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name     string
		checks   map[string]Check
		wantCode int
		want     map[string]string
	}{
		{
			name:     "all healthy",
			checks:   map[string]Check{"postgres": ok, "redis": ok},
			wantCode: http.StatusOK,
			want:     map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name:     "one dependency down",
			checks:   map[string]Check{"postgres": ok, "redis": down},
			wantCode: http.StatusServiceUnavailable,
			want:     map[string]string{"postgres": "ok", "redis": "connection refused"},
		},
		{
			name:     "no checks",
			wantCode: http.StatusOK,
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.checks, nil)

			code, body := get(t, srv.URL+"/ready")

			assert.Equal(t, tt.wantCode, code)
			var got map[string]string
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("clubserver_up 1"))
	})

	code, body := get(t, newTestServer(t, nil, metrics).URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "clubserver_up 1", body)

	code, _ = get(t, newTestServer(t, nil, nil).URL+"/metrics")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, sr.status)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
