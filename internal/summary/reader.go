package summary

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/fetcher"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
)

// Getter is the subset of the fetcher used by the strategies.
type Getter interface {
	Get(ctx context.Context, rawURL string, opts ...fetcher.CallOption) (*fetcher.Response, error)
}

// ErrRejected marks a reader body refused by the keyword denylist.
var ErrRejected = errors.New("reader body rejected")

// rejectKeywords disqualify a reader body that looks like an error page.
var rejectKeywords = []string{
	"error",
	"not found",
	"rate limit",
	"timeout",
	"failed",
	"too many requests",
}

// ReaderConfig configures the reader strategy.
type ReaderConfig struct {
	BaseURL    string        // ex: "https://r.jina.ai/"
	Timeout    time.Duration // per attempt. Default: 60s.
	Attempts   int           // Default: 2.
	RetryDelay time.Duration // fixed delay between attempts. Default: 2s.
}

// ReaderStrategy asks an external reader service for a text rendition of the
// page, retrying a bounded number of times.
type ReaderStrategy struct {
	get    Getter
	cfg    ReaderConfig
	logger logger.Logger
	sleep  func(context.Context, time.Duration)
}

// NewReaderStrategy creates the reader strategy.
func NewReaderStrategy(get Getter, cfg ReaderConfig, log logger.Logger) *ReaderStrategy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 2
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.BaseURL != "" && !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	return &ReaderStrategy{get: get, cfg: cfg, logger: log, sleep: sleep}
}

func (s *ReaderStrategy) Name() string { return "reader" }

// Endpoint returns the reader URL for rawURL: the base followed by host, path
// and query of the target, without its scheme.
func (s *ReaderStrategy) Endpoint(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	target := u.Hostname() + u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return s.cfg.BaseURL + target, nil
}

func (s *ReaderStrategy) Attempt(ctx context.Context, rawURL string) Outcome {
	endpoint, err := s.Endpoint(rawURL)
	if err != nil {
		return Outcome{Err: err}
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.Attempts; attempt++ {
		if attempt > 1 {
			s.sleep(ctx, s.cfg.RetryDelay)
		}

		text, err := s.once(ctx, endpoint)
		if err == nil {
			return Outcome{Text: text}
		}
		lastErr = err
		s.logger.Debug("reader attempt rejected",
			logger.String("url", rawURL),
			logger.Int("attempt", attempt),
			logger.Int("max_attempts", s.cfg.Attempts),
			logger.Error(err))
	}
	return Outcome{Err: fmt.Errorf("reader gave up after %d attempts: %w", s.cfg.Attempts, lastErr)}
}

func (s *ReaderStrategy) once(ctx context.Context, endpoint string) (string, error) {
	resp, err := s.get.Get(ctx, endpoint,
		fetcher.WithTimeout(s.cfg.Timeout),
		fetcher.WithLenientStatus(),
		fetcher.WithAccept("text/plain"),
	)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Body)
	if !IsUsable(text) {
		return "", fmt.Errorf("%w: body too short (%d)", ErrRejected, len([]rune(text)))
	}
	if kw, bad := containsRejectKeyword(text); bad {
		return "", fmt.Errorf("%w: contains %q", ErrRejected, kw)
	}
	return text, nil
}

func containsRejectKeyword(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range rejectKeywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
