package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Request describes a single page fetch.
// It is immutable per call: the fetcher never modifies it.
type Request struct {
	// URL is the absolute URL to fetch.
	URL string

	// Headers are header overrides applied on top of the fetcher defaults.
	Headers map[string]string

	// Timeout is the per-attempt timeout. Zero means the fetcher default.
	Timeout time.Duration

	// MaxRetries is the retry budget: the number of additional attempts
	// after the first. Negative means the fetcher default.
	MaxRetries int
}

// Result is a successfully fetched page.
// It is created per fetch and consumed immediately by the extractor;
// nothing persists it.
type Result struct {
	// URL is the request URL.
	URL string

	// Body is the page body as text.
	Body string

	// StatusCode is the HTTP response status.
	StatusCode int

	// ContentType is the Content-Type header value.
	ContentType string

	// Attempts is the number of attempts made, including the first.
	Attempts int

	// Duration is the total time spent fetching, including backoff sleeps.
	Duration time.Duration
}

// Fetcher issues GET requests with timeout, retry, and exponential backoff.
//
// Design decision: We use a struct with the http.Client rather than passing
// the client on each call because:
//  1. Client configuration (transport, redirect policy) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent is the User-Agent header sent with requests.
	userAgent string

	// maxBodySize limits the response body size to prevent memory
	// exhaustion from unexpectedly large pages.
	maxBodySize int64

	// timeout is the default per-attempt timeout.
	timeout time.Duration

	// maxRetries is the default retry budget.
	maxRetries int

	// backoffUnit is the base delay unit for exponential backoff.
	// The delay before retry n is 2^(n-1) units.
	backoffUnit time.Duration

	// limiter optionally rate-limits attempts across all callers.
	// Shared by concurrent workers so one host isn't hammered.
	limiter *rate.Limiter

	// logger records each attempt's outcome.
	logger *slog.Logger

	// sleep waits for a backoff delay. Extracted as a field so tests can
	// observe delays without waiting for them.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxRetries sets the default retry budget.
// The budget counts retries, not attempts: a budget of 3 allows up to
// four attempts in total.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithBackoffUnit sets the base backoff delay.
// The delay before the n-th retry is 2^(n-1) times this unit.
func WithBackoffUnit(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoffUnit = d
		}
	}
}

// WithLimiter sets a rate limiter applied before every attempt.
// Pass a limiter shared across workers to bound the overall request rate.
func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithLogger sets the logger used for per-attempt logging.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher with the given HTTP client.
//
// Design decision: We require an external client rather than constructing
// one internally because:
//  1. Transport configuration (proxies, TLS) belongs to the caller
//  2. Allows different configurations in tests
//  3. A shared client pools connections across fetches
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   "pagescan/1.0 (+https://github.com/pagescan/pagescan)",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		timeout:     30 * time.Second,
		maxRetries:  3,
		backoffUnit: time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.sleep == nil {
		f.sleep = func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		}
	}

	return f
}

// Fetch retrieves the page at req.URL.
//
// Transient failures (timeout, connection error, 5xx) are retried with
// exponential backoff until the retry budget is exhausted. Terminal failures
// (4xx) are returned immediately. The returned error is always a *FetchError
// when the fetch fails; it is never a panic and never fatal to the run.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = f.timeout
	}
	maxRetries := req.MaxRetries
	if maxRetries < 0 {
		maxRetries = f.maxRetries
	}

	start := time.Now()

	var lastErr *FetchError
	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		// Back off before every attempt but the first.
		// The delay before retry n is 2^(n-1) backoff units.
		if attempt > 1 {
			delay := f.backoffDelay(attempt - 1)
			f.logger.Debug("backing off before retry",
				"url", req.URL,
				"attempt", attempt,
				"delay", delay,
			)
			if err := f.sleep(ctx, delay); err != nil {
				// Cancellation during backoff is not retry exhaustion;
				// report it as its own failure.
				return nil, &FetchError{URL: req.URL, Kind: FailureCanceled, Attempts: attempt - 1, Err: err}
			}
		}

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, &FetchError{URL: req.URL, Kind: FailureCanceled, Attempts: attempt - 1, Err: err}
			}
		}

		result, ferr := f.attempt(ctx, req, timeout)
		if ferr == nil {
			result.Attempts = attempt
			result.Duration = time.Since(start)
			f.logger.Info("fetch succeeded",
				"url", req.URL,
				"status", result.StatusCode,
				"attempt", attempt,
				"bytes", len(result.Body),
			)
			return result, nil
		}

		ferr.Attempts = attempt
		lastErr = ferr

		if !ferr.retryable() {
			f.logger.Warn("fetch failed, not retryable",
				"url", req.URL,
				"kind", ferr.Kind.String(),
				"status", ferr.StatusCode,
				"attempt", attempt,
			)
			return nil, ferr
		}

		f.logger.Warn("fetch attempt failed",
			"url", req.URL,
			"kind", ferr.Kind.String(),
			"status", ferr.StatusCode,
			"attempt", attempt,
			"remaining", maxRetries + 1 - attempt,
		)
	}

	lastErr.Exhausted = true
	f.logger.Error("fetch failed, retries exhausted",
		"url", req.URL,
		"kind", lastErr.Kind.String(),
		"attempts", lastErr.Attempts,
	)
	return nil, lastErr
}

// attempt performs one GET request with the given timeout.
func (f *Fetcher) attempt(ctx context.Context, req Request, timeout time.Duration) (*Result, *FetchError) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, req.URL, nil)
	if err != nil {
		// A malformed URL can never succeed, regardless of retries.
		return nil, &FetchError{URL: req.URL, Kind: FailureInvalidURL, Err: err}
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Kind: classifyNetError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Drain is unnecessary; the body is closed by the deferred call.
		return nil, &FetchError{URL: req.URL, Kind: FailureHTTPStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: req.URL, Kind: classifyNetError(err), StatusCode: resp.StatusCode, Err: err}
	}

	return &Result{
		URL:         req.URL,
		Body:        string(body),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// backoffDelay returns the delay before the n-th retry (n >= 1).
func (f *Fetcher) backoffDelay(n int) time.Duration {
	return f.backoffUnit << (n - 1)
}

// classifyNetError maps a transport error to a failure kind.
// Timeouts (deadline exceeded, net.Error timeouts) are distinguished from
// other connection-level failures because both matter for user-facing
// diagnostics, even though both are retryable.
func classifyNetError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureConnection
}
