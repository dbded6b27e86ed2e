package restapi

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"otpviewer.org/internal/metrics"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an id when missing", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NotEmpty(t, GetRequestID(r.Context()))
		})
		rec := httptest.NewRecorder()
		RequestIDMiddleware(next).ServeHTTP(rec, httptest.NewRequest("GET", "http://example.com/foo", nil))

		assert.Regexp(t, `^[0-9a-f-]{36}$`, rec.Header().Get("X-Request-ID"))
	})

	t.Run("preserves a valid id", func(t *testing.T) {
		for _, id := range []string{"my-custom-trace-id-123", strings.Repeat("a", 128)} {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, id, GetRequestID(r.Context()))
			})
			req := httptest.NewRequest("GET", "http://example.com/foo", nil)
			req.Header.Set("X-Request-ID", id)
			rec := httptest.NewRecorder()
			RequestIDMiddleware(next).ServeHTTP(rec, req)

			assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
		}
	})

	t.Run("replaces an invalid id", func(t *testing.T) {
		for _, id := range []string{strings.Repeat("a", 129), "bad-id-<script>"} {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NotEqual(t, id, GetRequestID(r.Context()))
			})
			req := httptest.NewRequest("GET", "http://example.com/foo", nil)
			req.Header.Set("X-Request-ID", id)
			RequestIDMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)
		}
	})
}

func TestRequestLoggingIncludesRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := RequestIDMiddleware(NewRequestLoggingMiddleware(logger)(final))

	req := httptest.NewRequest("GET", "http://example.com/test", nil)
	req.Header.Set("X-Request-ID", "integration-test-id-999")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := logBuf.String()
	assert.Contains(t, out, `"request_id":"integration-test-id-999"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"msg":"http_request"`)
}

func TestMetricsHandlerNilMetrics(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	rec := httptest.NewRecorder()
	MetricsHandler(nil)(inner).ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsHandlerLabelsByPattern(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/where/route/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	server := httptest.NewServer(MetricsHandler(m)(mux))
	defer server.Close()

	for _, path := range []string{"/api/where/route/1", "/api/where/route/2", "/nope"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/where/route/{id}", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	w := newStatusRecorder(rec)
	assert.Equal(t, http.StatusOK, w.statusCode)

	w.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, w.statusCode)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCacheControlHeaders(t *testing.T) {
	env := createTestEnv(t)
	env.otp.set("Trip", `{"trip": null}`)
	server := serveApi(t, env.api)

	tests := []struct {
		name           string
		endpoint       string
		expectedHeader string
	}{
		{"static data", "/api/where/routes.json?key=TEST", "public, max-age=300"},
		{"realtime data", "/api/where/current-time.json?key=TEST", "public, max-age=30"},
		{"user data", "/api/where/favorite-stops.json?key=TEST", "no-cache, no-store, must-revalidate"},
		{"error response", "/api/where/trip/1:missing?key=TEST", "no-cache, no-store, must-revalidate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.endpoint)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedHeader, resp.Header.Get("Cache-Control"))
		})
	}
}

func TestCORSHeaders(t *testing.T) {
	env := createTestEnv(t)
	env.api.Config.CORSOrigins = []string{"https://viewer.example.org"}
	server := serveApi(t, env.api)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/where/current-time.json?key=TEST", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://viewer.example.org")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "https://viewer.example.org", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := createTestEnv(t)
	server := serveApi(t, env.api)

	resp, err := http.Get(server.URL + "/api/where/route/1:100?key=TEST")
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.api.Metrics.OTPRequestsTotal.WithLabelValues("route", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(env.api.Metrics.CacheLookupsTotal.WithLabelValues("route", "miss")))
}
