// Package fetch is the shared HTTP layer under every provider adapter:
// one retrying, caching, breaker-guarded JSON GET.
package fetch

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/placarlab/matchodds/internal/platform/cache"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/platform/resilience"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 4
	maxBodyBytes       = 6 << 20
)

var (
	// ErrTransient marks failures worth retrying: network errors, 5xx.
	ErrTransient = crerr.New("transient provider failure")
	// ErrMisconfigured marks an HTML response where JSON was expected,
	// which almost always means a wrong base URL or a rejected token.
	ErrMisconfigured = crerr.New("provider returned an HTML error page - check credentials and endpoint")
	// ErrCircuitOpen is returned without touching the network while the
	// provider's breaker is open.
	ErrCircuitOpen = crerr.New("provider circuit breaker is open")
)

var bearerTokenRegex = regexp.MustCompile(`(?i)(bearer\s+)[^\s"']+`)

type Config struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxAttempts    int
	Cache          *cache.Store
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig

	// Secrets scrubs credentials out of error text and log lines.
	Secrets []string
}

// Client issues JSON GET requests with retry, exponential backoff,
// rate-limit awareness and an optional response cache.
type Client struct {
	httpClient     *http.Client
	maxAttempts    int
	cache          *cache.Store
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	secrets        []string
	sleep          func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		maxAttempts:    maxAttempts,
		cache:          cfg.Cache,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		secrets:        cfg.Secrets,
		sleep:          sleepContext,
	}
}

// GetJSON fetches rawURL with params as query string and headers applied
// to the request. A cached body short-circuits the network entirely, so
// repeated calls within the cache TTL cost nothing upstream.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params map[string]string, headers map[string]string) ([]byte, error) {
	key := cache.RequestKey(rawURL, params)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			if raw, ok := cached.([]byte); ok {
				c.logger.DebugContext(ctx, "provider cache hit", "url", c.redact(rawURL))
				return raw, nil
			}
		}
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "provider circuit breaker rejected request", "url", c.redact(rawURL), "state", c.breaker.State())
			return nil, ErrCircuitOpen
		}
	}

	raw, err := c.execute(ctx, rawURL, params, headers)
	if c.circuitEnabled {
		if err != nil && crerr.Is(err, ErrTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, raw)
	}
	return raw, nil
}

// GetJSONInto decodes the fetched body into target.
func (c *Client) GetJSONInto(ctx context.Context, rawURL string, params map[string]string, headers map[string]string, target any) error {
	raw, err := c.GetJSON(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode provider payload")
	}
	return nil
}

func (c *Client) execute(ctx context.Context, rawURL string, params map[string]string, headers map[string]string) ([]byte, error) {
	fullURL := rawURL
	if len(params) > 0 {
		values := url.Values{}
		for key, value := range params {
			values.Set(key, value)
		}
		fullURL += "?" + values.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("Accept", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(ErrTransient, "send request: %s", c.redact(err.Error()))
			if err := c.waitBeforeRetry(ctx, attempt, backoffDelay(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = crerr.Wrapf(ErrTransient, "read response body: %v", readErr)
			if err := c.waitBeforeRetry(ctx, attempt, backoffDelay(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		if looksLikeHTML(resp.Header.Get("Content-Type"), raw) {
			return nil, crerr.Wrapf(ErrMisconfigured, "status=%d url=%s", resp.StatusCode, c.redact(rawURL))
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return raw, nil
		case resp.StatusCode == http.StatusTooManyRequests:
			// Rate limiting is expected under burst load. Wait it out
			// without recording a failure so the breaker stays intact
			// for real errors.
			delay := retryAfterDelay(resp.Header.Get("Retry-After"), attempt)
			c.logger.WarnContext(ctx, "provider rate limited, backing off",
				"url", c.redact(rawURL),
				"retry_after", delay,
				"attempt", attempt+1,
			)
			if err := c.waitBeforeRetry(ctx, attempt, delay); err != nil {
				return nil, err
			}
			continue
		default:
			// Any other error status gets the full retry treatment.
			// Providers answer 4xx for moments that heal on their own
			// (standings not published yet, token freshly rotated), so a
			// client error is not proof the request is hopeless.
			lastErr = crerr.Wrapf(ErrTransient, "provider status=%d message=%s", resp.StatusCode, extractErrorMessage(raw))
			if err := c.waitBeforeRetry(ctx, attempt, backoffDelay(attempt)); err != nil {
				return nil, err
			}
			continue
		}
	}

	if lastErr == nil {
		lastErr = crerr.Wrapf(ErrTransient, "request failed after %d attempts", c.maxAttempts)
	}
	c.logger.WarnContext(ctx, "provider request exhausted retries", "url", c.redact(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) waitBeforeRetry(ctx context.Context, attempt int, delay time.Duration) error {
	if attempt >= c.maxAttempts-1 {
		return nil
	}
	return c.sleep(ctx, delay)
}

func (c *Client) redact(value string) string {
	for _, secret := range c.secrets {
		if secret == "" {
			continue
		}
		value = strings.ReplaceAll(value, secret, "REDACTED")
	}
	return bearerTokenRegex.ReplaceAllString(value, "${1}REDACTED")
}

// backoffDelay grows 1.7x per attempt: ~1.7s, ~2.9s, ~4.9s.
func backoffDelay(attempt int) time.Duration {
	seconds := math.Pow(1.7, float64(attempt+1))
	return time.Duration(seconds * float64(time.Second))
}

func retryAfterDelay(header string, attempt int) time.Duration {
	if header != "" {
		if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return backoffDelay(attempt)
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	trimmed := strings.TrimSpace(string(body[:minInt(len(body), 256)]))
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

// extractErrorMessage pulls a human-readable message out of a provider
// error body when it is JSON, falling back to an abbreviated raw body.
func extractErrorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := sonic.Unmarshal(raw, &payload); err == nil {
		for _, candidate := range []string{payload.Message, payload.Error, payload.Detail} {
			if trimmed := strings.TrimSpace(candidate); trimmed != "" {
				return trimmed
			}
		}
	}

	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200] + "..."
	}
	if trimmed == "" {
		trimmed = "(empty body)"
	}
	return trimmed
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
