package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/metrics"
)

func TestIPRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Minute, 2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithNowFunc(func() time.Time { return now })

	if !limiter.Allow("1.2.3.4") || !limiter.Allow("1.2.3.4") {
		t.Fatal("expected burst of two to be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("expected third request to be limited")
	}
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("other keys must have their own bucket")
	}

	now = now.Add(time.Minute)
	if !limiter.Allow("1.2.3.4") {
		t.Fatal("expected token to refill after the window")
	}
}

func TestIPRateLimiterForgetsIdleKeys(t *testing.T) {
	limiter := NewIPRateLimiter(10, time.Second, 1, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.WithNowFunc(func() time.Time { return now })

	limiter.Allow("a")
	limiter.Allow("b")
	if got := limiter.Len(); got != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", got)
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow("c")
	if got := limiter.Len(); got != 1 {
		t.Fatalf("expected idle keys to be collected, got %d", got)
	}
}

type denyAll struct{ keys []string }

func (d *denyAll) Allow(key string) bool {
	d.keys = append(d.keys, key)
	return false
}

func TestRateLimitRejectsMutationsOnly(t *testing.T) {
	limiter := &denyAll{}
	handler := RateLimit(limiter, "films")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	before := testutil.ToFloat64(metrics.RateLimited)

	req := httptest.NewRequest(http.MethodGet, "/films", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected GET to bypass the limiter, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/films/1/like/2", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 192.168.1.1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "films:10.0.0.1" {
		t.Fatalf("unexpected limiter keys: %v", limiter.keys)
	}
	if got := testutil.ToFloat64(metrics.RateLimited) - before; got != 1 {
		t.Fatalf("expected one rate limited request recorded, got %v", got)
	}
}

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	handler := RateLimit(nil, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRequestLoggerAttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "req-123" {
		t.Fatalf("expected inbound request id to be reused, got %q", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	if !strings.Contains(buf.String(), `"status":202`) {
		t.Fatalf("expected completion log with status, got %s", buf.String())
	}
}

func TestRequestLoggerRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/films", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic to be logged, got %s", buf.String())
	}
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := metrics.HTTPRequests.WithLabelValues("/users/{id}", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/users/1", "/users/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("expected both requests under one route label, got %v", got)
	}
}
