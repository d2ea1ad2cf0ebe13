// Package upstream fetches monthly expenditure payloads from the transparency API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"despesas/internal/config"
	"despesas/internal/model"
)

// ErrFetchFailure marks a transient per-period failure: network error, timeout or non-2xx.
var ErrFetchFailure = errors.New("fetch failure")

// maxBodyBytes caps a single period payload.
const maxBodyBytes = 64 << 20

// FetchError describes a failed period fetch. It matches ErrFetchFailure with errors.Is.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

// Result is the outcome of a successful fetch. Records is empty when the
// upstream has no data for the period.
type Result struct {
	URL     string
	Body    []byte
	Records []json.RawMessage
}

// Empty reports whether the period had no data.
func (r *Result) Empty() bool { return r == nil || len(r.Records) == 0 }

// Fetcher retrieves the raw records of one period.
type Fetcher interface {
	Fetch(ctx context.Context, p model.Period) (*Result, error)
	URL(p model.Period) string
}

// Client is the HTTP Fetcher. Calls are paced by a token bucket and each
// request is bounded by the configured timeout. It never retries.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	limiter   *rate.Limiter
}

var _ Fetcher = (*Client)(nil)

// NewClient builds a Client from cfg. A nil httpClient gets an otelhttp instrumented default.
func NewClient(cfg config.UpstreamConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// URL returns the period endpoint: <base>/<municipality>/<year>/<month>.
func (c *Client) URL(p model.Period) string {
	return c.baseURL + "/" + p.Municipality + "/" + strconv.Itoa(p.Year) + "/" + strconv.Itoa(p.Month)
}

// Fetch issues one GET for p. A body that is not a JSON array, or an empty
// array, yields an empty Result and no error.
func (c *Client) Fetch(ctx context.Context, p model.Period) (*Result, error) {
	url := c.URL(p)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	res := &Result{URL: url, Body: body}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err == nil {
		res.Records = items
	}
	return res, nil
}
