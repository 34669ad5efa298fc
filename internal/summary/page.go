package summary

import (
	"context"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/extract"
	"github.com/MrSnakeDoc/linksaver/internal/fetcher"
)

// RuleMatcher finds the site rule for a host.
type RuleMatcher interface {
	Match(host string) (extract.SiteRule, bool)
}

// PageStrategy fetches the page itself and extracts a candidate from its HTML.
type PageStrategy struct {
	get     Getter
	rules   RuleMatcher
	timeout time.Duration
}

// NewPageStrategy creates the page strategy. rules may be nil.
func NewPageStrategy(get Getter, rules RuleMatcher, timeout time.Duration) *PageStrategy {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PageStrategy{get: get, rules: rules, timeout: timeout}
}

func (s *PageStrategy) Name() string { return "page" }

// Attempt returns the meta description when the page has one. Otherwise it
// tries the site rule for the host, then the structural content of the page,
// and returns the first usable one.
func (s *PageStrategy) Attempt(ctx context.Context, rawURL string) Outcome {
	resp, err := s.get.Get(ctx, rawURL,
		fetcher.WithTimeout(s.timeout),
		fetcher.WithAccept("text/html,application/xhtml+xml"),
	)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Text: s.pick(resp.Body, rawURL)}
}

func (s *PageStrategy) pick(page, rawURL string) string {
	// A qualifying meta description is the candidate; the chain gate judges it.
	if text, ok := extract.MetaDescription(page); ok {
		return text
	}

	var best string
	try := func(text string, ok bool) bool {
		if !ok {
			return false
		}
		if best == "" {
			best = text
		}
		return IsUsable(text)
	}

	if rule, ok := s.siteRule(rawURL); ok {
		if text, ok := extract.SiteContent(page, rule); try(text, ok) {
			return text
		}
	}
	if text, ok := extract.StructuralContent(page); try(text, ok) {
		return text
	}
	// Nothing passed the gate; the chain logs the best candidate's length.
	return best
}

func (s *PageStrategy) siteRule(rawURL string) (extract.SiteRule, bool) {
	if s.rules == nil {
		return extract.SiteRule{}, false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return extract.SiteRule{}, false
	}
	return s.rules.Match(u.Hostname())
}
