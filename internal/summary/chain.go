// Package summary produces a short description for a URL.
//
// A Chain runs its strategies in order and returns the first candidate that
// passes the shared quality gate. When every strategy fails it falls back to
// a description derived from the URL alone, so Summarize never fails.
package summary

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/extract"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
)

// MinSummaryLen is the length a candidate must exceed to be accepted.
const MinSummaryLen = 50

// FailureSummary is returned when the URL itself cannot be parsed.
const FailureSummary = "Summary generation failed - the page content could not be processed."

// Outcome is the result of one strategy attempt. A non-nil Err is a hard
// error, an empty Text means the strategy found nothing. Both advance the chain.
type Outcome struct {
	Text string
	Err  error
}

// Strategy is one way of obtaining a summary.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, rawURL string) Outcome
}

// IsUsable is the quality gate shared by every strategy.
func IsUsable(s string) bool {
	return extract.Len(s) > MinSummaryLen
}

// Chain tries strategies in order.
type Chain struct {
	strategies []Strategy
	logger     logger.Logger
}

// NewChain builds a chain. Strategies are tried in the order given.
func NewChain(log logger.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: log}
}

// Strategies returns the strategy names in order.
func (c *Chain) Strategies() []string {
	names := make([]string, 0, len(c.strategies))
	for _, s := range c.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Summarize returns the first usable candidate, or the URL based description.
// The caller's cancellation does not interrupt the chain.
func (c *Chain) Summarize(ctx context.Context, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		c.logger.Warn("summary: unparsable url",
			logger.String("url", rawURL))
		return FailureSummary
	}

	ctx = context.WithoutCancel(ctx)

	for _, s := range c.strategies {
		start := time.Now()
		out := c.attempt(ctx, s, rawURL)

		switch {
		case out.Err != nil:
			c.logger.Info("summary strategy failed",
				logger.String("strategy", s.Name()),
				logger.String("url", rawURL),
				logger.Duration("elapsed", time.Since(start)),
				logger.Error(out.Err))
		case !IsUsable(out.Text):
			c.logger.Info("summary strategy produced no usable candidate",
				logger.String("strategy", s.Name()),
				logger.String("url", rawURL),
				logger.Int("length", extract.Len(out.Text)),
				logger.Duration("elapsed", time.Since(start)))
		default:
			c.logger.Info("summary accepted",
				logger.String("strategy", s.Name()),
				logger.String("url", rawURL),
				logger.Int("length", extract.Len(out.Text)),
				logger.Duration("elapsed", time.Since(start)))
			return out.Text
		}
	}

	desc := BasicDescription(rawURL)
	c.logger.Info("summary fell back to url description",
		logger.String("url", rawURL))
	return desc
}

func (c *Chain) attempt(ctx context.Context, s Strategy, rawURL string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("strategy %s panicked: %v", s.Name(), r)}
		}
	}()
	return s.Attempt(ctx, rawURL)
}
