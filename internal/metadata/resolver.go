// Package metadata resolves the title and favicon of a page.
package metadata

import (
	"context"
	"time"

	"github.com/peterhellberg/link"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/extract"
	"github.com/MrSnakeDoc/linksaver/internal/fetcher"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
)

// Getter is the subset of the fetcher used by the resolver.
type Getter interface {
	Get(ctx context.Context, rawURL string, opts ...fetcher.CallOption) (*fetcher.Response, error)
}

// Resolver fetches a page once and reads its title and icon.
type Resolver struct {
	get     Getter
	timeout time.Duration
	logger  logger.Logger
}

// NewResolver creates a resolver. A zero timeout uses the getter's default.
func NewResolver(get Getter, timeout time.Duration, log logger.Logger) *Resolver {
	return &Resolver{get: get, timeout: timeout, logger: log}
}

// Resolve never fails. On fetch failure it logs a warning and returns an
// untitled result without favicon.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) domain.Metadata {
	var opts []fetcher.CallOption
	if r.timeout > 0 {
		opts = append(opts, fetcher.WithTimeout(r.timeout))
	}
	opts = append(opts, fetcher.WithAccept("text/html,application/xhtml+xml"))

	resp, err := r.get.Get(ctx, rawURL, opts...)
	if err != nil {
		r.logger.Warn("metadata fetch failed",
			logger.String("url", rawURL),
			logger.Error(err))
		return domain.Metadata{Title: domain.UntitledTitle}
	}

	meta := domain.Metadata{Title: domain.UntitledTitle}
	if title, ok := extract.Title(resp.Body); ok {
		meta.Title = title
	}
	if icon, ok := extract.Favicon(resp.Body, rawURL); ok {
		meta.Favicon = icon
	} else if icon, ok := headerIcon(resp, rawURL); ok {
		meta.Favicon = icon
	}

	r.logger.Debug("metadata resolved",
		logger.String("url", rawURL),
		logger.String("title", meta.Title),
		logger.Bool("favicon", meta.Favicon != ""))
	return meta
}

// headerIcon looks for a Link: <...>; rel="icon" response header.
func headerIcon(resp *fetcher.Response, base string) (string, bool) {
	if resp.Header == nil {
		return "", false
	}
	for _, l := range link.ParseHeader(resp.Header) {
		if l.Rel != "icon" && l.Rel != "shortcut icon" {
			continue
		}
		if abs, ok := extract.ResolveAgainstOrigin(l.URI, base); ok {
			return abs, true
		}
	}
	return "", false
}
