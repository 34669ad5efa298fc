// Package fetcher performs the outbound HTTP GETs of the acquisition pipeline.
//
// It never retries. Callers decide what a failure means: the summary chain
// and the metadata resolver both absorb every error returned here.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrFetch is matched by every error returned from Get.
var ErrFetch = errors.New("fetch failed")

// FetchError describes a failed GET. StatusCode is zero for transport errors.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Response is a fully read response body with its status and headers.
type Response struct {
	Body       string
	StatusCode int
	Header     http.Header
}

// Config configures the fetcher.
type Config struct {
	Timeout      time.Duration // default per-call timeout. Default: 10s.
	MaxBytes     int64         // body cap. Default: 5MB.
	UserAgent    string        // sent on every request.
	MaxRedirects int           // Default: 10.
	Client       *http.Client  // optional, tests inject httptest clients.
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 5 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; LinkSaver/1.0)"
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = 10
	}
}

// Fetcher issues GET requests with a constant user agent and a bounded body.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	client := cfg.Client
	if client == nil {
		maxRedirects := cfg.MaxRedirects
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		}
	}
	return &Fetcher{client: client, config: cfg}
}

type callOptions struct {
	timeout      time.Duration
	lenient      bool
	accept       string
	extraHeaders map[string]string
}

// CallOption tunes a single Get.
type CallOption func(*callOptions)

// WithTimeout overrides the configured timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = d }
}

// WithLenientStatus accepts any status below 500 instead of only 2xx/3xx.
func WithLenientStatus() CallOption {
	return func(o *callOptions) { o.lenient = true }
}

// WithAccept sets the Accept header.
func WithAccept(mime string) CallOption {
	return func(o *callOptions) { o.accept = mime }
}

// WithHeader adds a request header.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.extraHeaders == nil {
			o.extraHeaders = make(map[string]string)
		}
		o.extraHeaders[key] = value
	}
}

// Timeout returns the configured default per-call timeout.
func (f *Fetcher) Timeout() time.Duration { return f.config.Timeout }

// Get fetches rawURL. Cancellation of ctx is not propagated: a fetch always
// runs to its own timeout and only ctx values are kept.
func (f *Fetcher) Get(ctx context.Context, rawURL string, opts ...CallOption) (*Response, error) {
	o := callOptions{timeout: f.config.Timeout}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	if o.accept != "" {
		req.Header.Set("Accept", o.accept)
	}
	for k, v := range o.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("http get: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if !acceptable(resp.StatusCode, o.lenient) {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Response{
		Body:       string(body),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}, nil
}

func acceptable(status int, lenient bool) bool {
	if lenient {
		return status < http.StatusInternalServerError
	}
	return status >= 200 && status < 400
}
