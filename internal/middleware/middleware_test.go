package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/movie-catalog/backend/internal/metrics"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/movies", nil))

	if seen == "" {
		t.Fatal("expected generated request id in context")
	}
	if got := resp.Header().Get(RequestIDHeader); got != seen {
		t.Fatalf("expected response header %q, got %q", seen, got)
	}
}

func TestRequestIDReusesIncomingHeader(t *testing.T) {
	handler := RequestID(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if got := resp.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected abc-123, got %q", got)
	}
}

func TestLoggerWritesAccessLineWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	handler := Logger(logger)(RequestID(http.HandlerFunc(okHandler)))

	req := httptest.NewRequest(http.MethodGet, "/movies/123", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{`"path":"/movies/123"`, `"status":200`, `"request_id":"req-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in access log, got %s", want, out)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS("")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/movies", nil)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestCORSSpecificOrigin(t *testing.T) {
	handler := CORS("https://movies.example")(http.HandlerFunc(okHandler))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/movies", nil))

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://movies.example" {
		t.Fatalf("unexpected origin %q", got)
	}
	if got := resp.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCacheControl(t *testing.T) {
	resp := httptest.NewRecorder()
	CacheControl("public, max-age=60")(http.HandlerFunc(okHandler)).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/movies", nil))
	if got := resp.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}

	resp = httptest.NewRecorder()
	CacheControl("")(http.HandlerFunc(okHandler)).
		ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/movies", nil))
	if got := resp.Header().Get("Cache-Control"); got != "" {
		t.Fatalf("expected no Cache-Control, got %q", got)
	}
}

func counterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := counterValue(metrics.HTTPRequestsTotal, http.MethodGet, "/things/{id}", "404")
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/things/42", nil))
	after := counterValue(metrics.HTTPRequestsTotal, http.MethodGet, "/things/{id}", "404")

	if after != before+1 {
		t.Fatalf("expected counter to increment by 1, got diff %.0f", after-before)
	}
}
