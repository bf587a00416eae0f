package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/placarlab/matchodds/internal/platform/cache"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/platform/resilience"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	c := NewClient(cfg)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestGetJSON_RetriesAfterRateLimit(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, Config{HTTPClient: srv.Client()})
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	raw, err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", raw)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
	if len(waits) != 1 || waits[0] != time.Second {
		t.Fatalf("expected a single 1s Retry-After wait, got %v", waits)
	}
}

func TestGetJSON_RateLimitExhaustionIsTransient(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// More 429 rounds than the retry budget; each round must loop
		// without becoming the recorded failure.
		if requests.Add(1) <= 5 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{HTTPClient: srv.Client(), MaxAttempts: 2})

	// With only 429 responses inside the attempt budget the client must
	// exhaust retries without surfacing a rate-limit error message.
	_, err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !crerr.Is(err, ErrTransient) {
		t.Fatalf("exhaustion should be transient, got %v", err)
	}
}

func TestGetJSON_HTMLResponseIsMisconfiguration(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><body>Access denied</body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{HTTPClient: srv.Client()})

	_, err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if !crerr.Is(err, ErrMisconfigured) {
		t.Fatalf("expected misconfiguration error, got %v", err)
	}
	if got := requests.Load(); got != 1 {
		t.Fatalf("HTML response must not be retried, got %d requests", got)
	}
}

func TestGetJSON_ServesFromCache(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(`{"cached":true}`))
	}))
	defer srv.Close()

	store := cache.NewStore(time.Minute)
	c := newTestClient(t, Config{HTTPClient: srv.Client(), Cache: store})

	params := map[string]string{"dateFrom": "2026-08-20", "status": "SCHEDULED,TIMED"}
	if _, err := c.GetJSON(context.Background(), srv.URL, params, nil); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	// Same params in a different declaration order must hit the cache.
	if _, err := c.GetJSON(context.Background(), srv.URL, map[string]string{"status": "SCHEDULED,TIMED", "dateFrom": "2026-08-20"}, nil); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if got := requests.Load(); got != 1 {
		t.Fatalf("expected 1 upstream request, got %d", got)
	}
}

func TestGetJSON_ServerErrorRetriesThenFails(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream exploded"}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, Config{HTTPClient: srv.Client(), MaxAttempts: 3})
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	_, err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if !crerr.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if got := requests.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if len(waits) != 2 {
		t.Fatalf("expected 2 backoff waits, got %d", len(waits))
	}
	if waits[1] <= waits[0] {
		t.Fatalf("backoff must grow: %v", waits)
	}
}

func TestGetJSON_ClientErrorRetriesThenFails(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"competition not found"}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := newTestClient(t, Config{HTTPClient: srv.Client(), MaxAttempts: 3})
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	_, err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	// Client errors ride the same retry loop as 5xx: standings not yet
	// published or a freshly rotated token both clear up on their own.
	if !crerr.Is(err, ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "competition not found") {
		t.Fatalf("error should carry provider message, got %q", got)
	}
	if got := requests.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if len(waits) != 2 {
		t.Fatalf("expected 2 backoff waits, got %d", len(waits))
	}
}

func TestGetJSON_ClientErrorRecoversOnRetry(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"standings not available yet"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Config{HTTPClient: srv.Client(), MaxAttempts: 3})

	raw, err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", raw)
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestGetJSON_CircuitBreakerRejectsWhenOpen(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{
		HTTPClient:  srv.Client(),
		MaxAttempts: 1,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := c.GetJSON(context.Background(), srv.URL, nil, nil); err == nil {
		t.Fatal("expected first request to fail")
	}
	_, err := c.GetJSON(context.Background(), srv.URL, nil, nil)
	if !crerr.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open rejection, got %v", err)
	}
}

func TestBackoffDelay_Grows(t *testing.T) {
	t.Parallel()

	first := backoffDelay(1)
	second := backoffDelay(2)
	if first < 2800*time.Millisecond || first > 3*time.Second {
		t.Fatalf("unexpected first backoff %v", first)
	}
	if second <= first {
		t.Fatalf("backoff must grow: %v then %v", first, second)
	}
}
