package crawler

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/time/rate"
)

// Fetch defaults. The attempt count is deliberately small: a clinic site
// that fails three times in a row is down, and the budget is better
// spent on its other pages.
const (
	defaultFetchAttempts = 3
	defaultFetchBackoff  = 500 * time.Millisecond
	defaultMaxBodySize   = 5 * 1024 * 1024
	defaultHostInterval  = 300 * time.Millisecond
	defaultHostWorkers   = 2
)

// ErrNotHTML is returned when a response is not an HTML document.
var ErrNotHTML = errors.New("response is not HTML")

// FetchResult is the outcome of a successful fetch.
type FetchResult struct {
	// StatusCode is the HTTP status code (always 2xx here).
	StatusCode int

	// Body is the response body, capped at the configured size.
	Body string
}

// FetchError is a failed fetch with its classification attached, so the
// scheduler can record why a page failed without string matching.
type FetchError struct {
	// URL is the URL that failed.
	URL string

	// StatusCode is the HTTP status for non-2xx failures, 0 otherwise.
	StatusCode int

	// Err is the final underlying error.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying error to errors.Is/As.
func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves HTML pages with bounded retries, exponential backoff
// with jitter, a response size cap, and per-host politeness limits.
//
// Design decision: The per-host limiter and semaphore are keyed by host
// even though a single run only crawls one domain. The politeness
// contract is per-host, and keying it that way means concurrent batch
// scans of different sites and any future multi-domain crawl inherit it
// for free.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	attempts    int
	backoff     time.Duration
	logger      *slog.Logger

	// headers and cookie are extra request values from per-site config.
	headers map[string]string
	cookie  string

	// hostWorkers caps in-flight requests per host; hostInterval is the
	// minimum spacing between requests to one host.
	hostWorkers  int
	hostInterval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	slots    map[string]chan struct{}
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxBodySize caps the response body size in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithAttempts sets the total attempt count per URL (first try included).
func WithAttempts(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithBackoff sets the initial retry backoff. Each retry doubles it and
// adds up to 50% jitter.
func WithBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoff = d
		}
	}
}

// WithHostWorkers caps concurrent requests per host.
func WithHostWorkers(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.hostWorkers = n
		}
	}
}

// WithHostInterval sets the minimum spacing between requests to one host.
func WithHostInterval(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.hostInterval = d
		}
	}
}

// WithExtraHeaders sets additional request headers (from per-site config).
func WithExtraHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) { f.headers = headers }
}

// WithCookie sets a Cookie header value (from per-site config).
func WithCookie(cookie string) FetcherOption {
	return func(f *Fetcher) { f.cookie = cookie }
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher around the given HTTP client. The client
// carries the per-request timeout; the Fetcher adds retry, size, and
// politeness behavior on top.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:       client,
		maxBodySize:  defaultMaxBodySize,
		attempts:     defaultFetchAttempts,
		backoff:      defaultFetchBackoff,
		hostWorkers:  defaultHostWorkers,
		hostInterval: defaultHostInterval,
		limiters:     make(map[string]*rate.Limiter),
		slots:        make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch retrieves one HTML page. Transient network failures are retried
// with exponential backoff plus jitter; permanent failures (DNS, TLS)
// and non-2xx responses fail immediately. All failures come back as a
// *FetchError; the caller records them and moves on.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	host := strings.ToLower(u.Host)

	// Per-host politeness: wait for a request slot, then for the rate
	// limiter. The slot bounds concurrency; the limiter bounds rate.
	release, err := f.acquireSlot(ctx, host)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer release()

	if err := f.limiterFor(host).Wait(ctx); err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		result, err := f.doFetch(ctx, pageURL)
		if err == nil {
			return result, nil
		}

		var fe *FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			// Non-2xx is not transient: the server answered.
			return nil, err
		}
		if !isTransient(err) {
			return nil, &FetchError{URL: pageURL, Err: err}
		}

		lastErr = err
		if attempt == f.attempts {
			break
		}

		delay := f.retryDelay(attempt)
		f.logger.Debug("transient fetch failure, retrying",
			"url", pageURL,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, &FetchError{URL: pageURL, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}

	return nil, &FetchError{URL: pageURL, Err: lastErr}
}

// doFetch performs a single request attempt.
func (f *Fetcher) doFetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode, Err: ErrNotHTML}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, err
	}

	return &FetchResult{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// retryDelay computes the backoff for the given attempt number:
// exponential doubling plus up to 50% random jitter, so concurrent
// workers retrying the same flaky host do not synchronize.
func (f *Fetcher) retryDelay(attempt int) time.Duration {
	base := f.backoff << (attempt - 1)
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return base + jitter
}

// limiterFor returns the politeness rate limiter for a host.
func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(f.hostInterval), f.hostWorkers)
		f.limiters[host] = l
	}
	return l
}

// acquireSlot blocks until a per-host concurrency slot is free and
// returns the release function.
func (f *Fetcher) acquireSlot(ctx context.Context, host string) (func(), error) {
	f.mu.Lock()
	slot, ok := f.slots[host]
	if !ok {
		slot = make(chan struct{}, f.hostWorkers)
		f.slots[host] = slot
	}
	f.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// isTransient classifies an error as retryable. Timeouts and connection
// resets are transient; DNS resolution and TLS failures are permanent
// (retrying will not make a certificate valid).
func isTransient(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return false
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return false
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return false
}
