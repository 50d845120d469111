package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	pkgerrs "github.com/redditmcp/reddit-mcp/pkg/errors"
	"github.com/redditmcp/reddit-mcp/pkg/types"
)

const (
	// DefaultRequestsPerMinute matches Reddit's documented OAuth quota of 100
	// requests per minute per client.
	DefaultRequestsPerMinute = 100.0
	// DefaultRateLimitBurst allows short bursts while staying under the quota.
	DefaultRateLimitBurst = 10

	secondsPerMinute  = 60.0
	parseFloatBitSize = 64

	// maxErrorBodyBytes bounds how much of an error response body is kept for
	// diagnostics.
	maxErrorBodyBytes = 2048
)

// RateLimitConfig controls client-side request pacing.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained request rate. Zero or negative
	// disables proactive pacing (header-driven delays still apply).
	RequestsPerMinute float64
	// Burst is the number of requests that may be sent back-to-back.
	Burst int
}

// TokenProvider supplies bearer tokens for API requests. Implementations
// handle caching and refresh; the transport asks for a token on every request
// so renewals propagate without restarting the client.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// Transport issues authenticated requests against the Reddit API, pacing them
// with a client-side limiter and honoring the rate headers Reddit returns.
type Transport struct {
	client    *http.Client
	baseURL   *url.URL
	userAgent string
	auth      TokenProvider
	logger    *slog.Logger

	limiter *rate.Limiter

	mu             sync.Mutex
	forceWaitUntil time.Time
}

// NewTransport creates a transport rooted at baseURL. A nil rateCfg applies
// the defaults.
func NewTransport(httpClient *http.Client, auth TokenProvider, baseURL, userAgent string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Transport, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if auth == nil {
		return nil, &pkgerrs.ClientError{Message: "token provider cannot be nil"}
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ClientError{Message: fmt.Sprintf("failed to parse base URL: %v", err)}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	return &Transport{
		client:    httpClient,
		baseURL:   parsedURL,
		userAgent: userAgent,
		auth:      auth,
		logger:    logger,
		limiter:   buildLimiter(rateCfg),
	}, nil
}

func buildLimiter(cfg *RateLimitConfig) *rate.Limiter {
	requestsPerMinute := DefaultRequestsPerMinute
	burst := DefaultRateLimitBurst

	if cfg != nil {
		if cfg.RequestsPerMinute <= 0 {
			return nil
		}
		requestsPerMinute = cfg.RequestsPerMinute
		if cfg.Burst > 0 {
			burst = cfg.Burst
		}
	}

	perSecond := rate.Limit(requestsPerMinute / secondsPerMinute)
	return rate.NewLimiter(perSecond, burst)
}

// NewRequest builds an authenticated request for the given API path, relative
// to the transport's base URL. The raw_json parameter is always set so Reddit
// returns body text without HTML entity escaping.
func (t *Transport) NewRequest(ctx context.Context, method, path string, query url.Values) (*http.Request, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "parse path", URL: path, Err: err}
	}
	u := t.baseURL.ResolveReference(rel)

	if query == nil {
		query = url.Values{}
	}
	query.Set("raw_json", "1")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "create request", URL: u.String(), Err: err}
	}

	token, err := t.auth.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", t.userAgent)
	return req, nil
}

// Do executes the request and decodes the response body into a Thing.
func (t *Transport) Do(req *http.Request, v *types.Thing) error {
	body, err := t.do(req)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &pkgerrs.ParseError{Operation: "decode response", Err: err}
	}
	return nil
}

// DoRaw executes the request and returns the raw response body. Callers use
// this for endpoints whose top-level JSON shape is not a single Thing.
func (t *Transport) DoRaw(req *http.Request) ([]byte, error) {
	return t.do(req)
}

func (t *Transport) do(req *http.Request) ([]byte, error) {
	if err := t.waitForRateLimit(req); err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "execute request", URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	t.applyRateHeaders(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &pkgerrs.APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(excerpt)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.RequestError{Operation: "read response", URL: req.URL.String(), Err: err}
	}
	return body, nil
}

// waitForRateLimit blocks until both the header-driven delay and the
// client-side limiter allow the request to proceed.
func (t *Transport) waitForRateLimit(req *http.Request) error {
	if err := t.waitForForcedDelay(req); err != nil {
		return err
	}
	if t.limiter == nil {
		return nil
	}
	if err := t.limiter.Wait(req.Context()); err != nil {
		return &pkgerrs.RequestError{Operation: "rate limit wait", URL: req.URL.String(), Err: err}
	}
	return nil
}

func (t *Transport) waitForForcedDelay(req *http.Request) error {
	for {
		t.mu.Lock()
		wait := time.Until(t.forceWaitUntil)
		t.mu.Unlock()

		if wait <= 0 {
			t.clearForcedDelay()
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return &pkgerrs.RequestError{Operation: "rate limit wait", URL: req.URL.String(), Err: req.Context().Err()}
		case <-timer.C:
		}
	}
}

func (t *Transport) clearForcedDelay() {
	t.mu.Lock()
	if !t.forceWaitUntil.IsZero() && time.Now().After(t.forceWaitUntil) {
		t.forceWaitUntil = time.Time{}
	}
	t.mu.Unlock()
}

// applyRateHeaders inspects Reddit's rate limit headers and schedules a
// forced delay when the remaining quota is exhausted or a Retry-After is
// present.
func (t *Transport) applyRateHeaders(resp *http.Response) {
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.ParseFloat(retryAfter, parseFloatBitSize); err == nil && seconds > 0 {
			t.deferRequests(time.Duration(seconds * float64(time.Second)))
			if t.logger != nil {
				t.logger.Warn("rate limited by Reddit", "retry_after_seconds", seconds)
			}
			return
		}
	}

	remainingHeader := resp.Header.Get("X-Ratelimit-Remaining")
	resetHeader := resp.Header.Get("X-Ratelimit-Reset")
	if remainingHeader == "" || resetHeader == "" {
		return
	}

	remaining, err := strconv.ParseFloat(remainingHeader, parseFloatBitSize)
	if err != nil {
		return
	}
	reset, err := strconv.ParseFloat(resetHeader, parseFloatBitSize)
	if err != nil || reset <= 0 {
		return
	}

	if remaining <= 1 {
		t.deferRequests(time.Duration(reset * float64(time.Second)))
		if t.logger != nil {
			t.logger.Debug("quota nearly exhausted, deferring requests", "reset_seconds", reset)
		}
	}
}

// deferRequests pushes the forced-delay deadline forward; the latest deadline
// wins.
func (t *Transport) deferRequests(d time.Duration) {
	until := time.Now().Add(d)
	t.mu.Lock()
	if until.After(t.forceWaitUntil) {
		t.forceWaitUntil = until
	}
	t.mu.Unlock()
}
