// Package transport is the HTTP transport the rest of the resolver issues
// all network I/O through: GET, POST, HEAD, content-length probing, and
// ranged streaming, all behind one retrying, jittered-backoff client.
package transport

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/corestream/ytv1/internal/rerr"
)

// RetryConfig controls the exponential backoff wrapper around transient
// failures: network error, 5xx, or timeout are retried; 4xx other than 429
// are not.
type RetryConfig struct {
	MaxAttempts int           // default 5
	BaseDelay   time.Duration // default 250ms
	Factor      float64       // default 2
	JitterFrac  float64       // default 0.20 (±20%)
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 250 * time.Millisecond
	}
	if c.Factor <= 0 {
		c.Factor = 2
	}
	if c.JitterFrac <= 0 {
		c.JitterFrac = 0.20
	}
	return c
}

// Transport issues HTTP requests on behalf of the rest of the resolver. It
// is safe for concurrent use: the underlying *http.Client pools connections
// across calls.
type Transport struct {
	client *http.Client
	retry  RetryConfig
}

// New builds a Transport. A nil client defaults to http.DefaultClient.
func New(client *http.Client, retry RetryConfig) *Transport {
	if client == nil {
		client = http.DefaultClient
	}
	return &Transport{client: client, retry: retry.withDefaults()}
}

// Get issues a GET and returns the body.
func (t *Transport) Get(ctx context.Context, rawURL string, headers http.Header) ([]byte, error) {
	return t.doWithRetry(ctx, http.MethodGet, rawURL, headers, nil)
}

// Post issues a POST with the given body and returns the response body.
func (t *Transport) Post(ctx context.Context, rawURL string, headers http.Header, body []byte) ([]byte, error) {
	return t.doWithRetry(ctx, http.MethodPost, rawURL, headers, body)
}

// Head issues a HEAD and returns the response status code. Status codes
// are returned, not classified as error, so the caller can check for a
// specific status (a 403 on a probe URL, say) without Head itself having
// an opinion about which statuses matter.
func (t *Transport) Head(ctx context.Context, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, &rerr.CancelledError{Cause: ctx.Err()}
		}
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// ProbeContentLength issues a HEAD and falls back to a ranged GET. On any
// failure it returns ok=false ("unknown"), never an error: the
// caller treats unknown length the same way regardless of which probe
// strategy failed.
func (t *Transport) ProbeContentLength(ctx context.Context, rawURL string) (length int64, ok bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err == nil {
		if resp, err := t.client.Do(req); err == nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK && resp.ContentLength > 0 {
				return resp.ContentLength, true
			}
		}
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, false
	}
	if total, ok := parseContentRangeTotal(resp.Header.Get("Content-Range")); ok {
		return total, true
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength, true
	}
	return 0, false
}

func parseContentRangeTotal(headerVal string) (int64, bool) {
	// Format: "bytes 0-0/12345"
	idx := -1
	for i := len(headerVal) - 1; i >= 0; i-- {
		if headerVal[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(headerVal) {
		return 0, false
	}
	total, err := strconv.ParseInt(headerVal[idx+1:], 10, 64)
	if err != nil || total <= 0 {
		return 0, false
	}
	return total, true
}

// Stream opens a readable byte stream for rawURL, optionally starting at a
// byte offset (range start; 0 means "from the beginning"). The caller owns
// the returned io.ReadCloser and must Close it.
func (t *Transport) Stream(ctx context.Context, rawURL string, rangeStart int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if rangeStart > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(rangeStart, 10)+"-")
	}
	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &rerr.CancelledError{Cause: ctx.Err()}
		}
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		defer resp.Body.Close()
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}
	return resp.Body, nil
}

// HTTPStatusError is returned for a non-2xx response that made it past the
// retry wrapper (i.e. it was not retryable, or retries were exhausted).
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return "http status " + strconv.Itoa(e.StatusCode) + " for " + e.URL
}

func (t *Transport) doWithRetry(ctx context.Context, method, rawURL string, headers http.Header, body []byte) ([]byte, error) {
	cfg := t.retry
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, backoffDelay(cfg, attempt-1)); err != nil {
				return nil, err
			}
		}

		respBody, status, err := t.doOnce(ctx, method, rawURL, headers, body)
		if err == nil && !isRetryableStatus(status) {
			if status >= 400 {
				return nil, &HTTPStatusError{StatusCode: status, URL: rawURL}
			}
			return respBody, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, &rerr.CancelledError{Cause: ctx.Err()}
			}
			lastErr = &rerr.TransientFailure{Cause: err}
			continue
		}
		lastErr = &rerr.TransientFailure{Cause: &HTTPStatusError{StatusCode: status, URL: rawURL}}
	}
	return nil, lastErr
}

func (t *Transport) doOnce(ctx context.Context, method, rawURL string, headers http.Header, body []byte) ([]byte, int, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return nil, 0, err
	}
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return out, resp.StatusCode, nil
}

// isRetryableStatus reports whether a status code is retried by the
// wrapper: 5xx or 429. Other 4xx codes are not retried.
func isRetryableStatus(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status < 600
}

func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= cfg.Factor
	}
	jitter := 1 + cfg.JitterFrac*(2*rand.Float64()-1)
	return time.Duration(delay * jitter)
}

func sleepBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &rerr.CancelledError{Cause: ctx.Err()}
	case <-timer.C:
		return nil
	}
}

// EscapeQueryValue is a small helper shared by callers that build player
// endpoint URLs with an API key query parameter.
func EscapeQueryValue(v string) string {
	return url.QueryEscape(v)
}
