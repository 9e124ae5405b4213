package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Fetcher performs polite, retried HTTP GETs for providers
type Fetcher struct {
	client   *http.Client
	limiter  *Limiter
	logger   *slog.Logger
	attempts uint
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithDelay sets the minimum delay between requests to one host
func WithDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.limiter = NewLimiter(d) }
}

// WithFetchLogger sets the logger
func WithFetchLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// WithAttempts sets how many times a transient failure is tried
func WithAttempts(n uint) FetcherOption {
	return func(f *Fetcher) { f.attempts = max(n, 1) }
}

// NewFetcher creates a Fetcher with a 15s timeout and a 1s per-host delay
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		limiter:  NewLimiter(time.Second),
		logger:   slog.Default(),
		attempts: 2,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get fetches rawURL with the given headers and returns the body
func (f *Fetcher) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	return Retry(ctx, f.logger, f.attempts, func() ([]byte, error) {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	})
}

// Client returns an http.Client with the fetcher's timeout whose requests
// wait on the fetcher's per-host delay. It serves SDKs that build their
// own requests.
func (f *Fetcher) Client() *http.Client {
	base := f.client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   f.client.Timeout,
		Transport: &politeTransport{base: base, limiter: f.limiter},
	}
}

type politeTransport struct {
	base    http.RoundTripper
	limiter *Limiter
}

func (t *politeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context(), req.URL.String()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

// Retry runs fn, retrying transient failures with a short jittered delay
func Retry[T any](ctx context.Context, logger *slog.Logger, attempts uint, fn func() (T, error)) (T, error) {
	return retry.DoWithData(
		fn,
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(Retryable),
		retry.OnRetry(func(n uint, err error) {
			if logger != nil {
				logger.DebugContext(ctx, "retrying search request", "attempt", n+1, "error", err)
			}
		}),
	)
}

// Retryable reports whether err is worth another attempt. 429 and 5xx
// are transient, other HTTP statuses are permanent, and transport
// errors are retried unless the context is done.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

// Limiter spaces out requests to the same host
type Limiter struct {
	delay time.Duration
	last  sync.Map // host -> time.Time
	mu    sync.Map // host -> *sync.Mutex
}

// NewLimiter creates a Limiter with the given minimum per-host spacing
func NewLimiter(delay time.Duration) *Limiter {
	return &Limiter{delay: delay}
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	if l == nil || l.delay <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	host := u.Host

	muI, _ := l.mu.LoadOrStore(host, &sync.Mutex{})
	mu := muI.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	if lastI, ok := l.last.Load(host); ok {
		if wait := l.delay - time.Since(lastI.(time.Time)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	l.last.Store(host, time.Now())
	return nil
}
