package app

import (
	"github.com/MrSnakeDoc/linksaver/internal/config"
	"github.com/MrSnakeDoc/linksaver/internal/fetcher"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/metadata"
	"github.com/MrSnakeDoc/linksaver/internal/sources/siterules"
	"github.com/MrSnakeDoc/linksaver/internal/summary"
)

// Pipeline is the acquisition side of a bookmark: one shared fetcher, the
// metadata resolver and the summary chain.
type Pipeline struct {
	Fetcher  *fetcher.Fetcher
	Metadata *metadata.Resolver
	Summary  *summary.Chain
}

// NewPipeline builds the acquisition pipeline from cfg. The reader strategy
// runs first when enabled, then the page strategy with the site rules.
func NewPipeline(cfg *config.Config, rules *siterules.Registry, log logger.Logger) *Pipeline {
	f := fetcher.New(fetcher.Config{
		Timeout:   cfg.FetchTimeout,
		MaxBytes:  cfg.MaxBodyBytes,
		UserAgent: cfg.UserAgent,
	})

	strategies := make([]summary.Strategy, 0, 2)
	if cfg.ReaderEnabled {
		strategies = append(strategies, summary.NewReaderStrategy(f, summary.ReaderConfig{
			BaseURL:    cfg.ReaderBaseURL,
			Timeout:    cfg.ReaderTimeout,
			Attempts:   cfg.ReaderAttempts,
			RetryDelay: cfg.ReaderRetryDelay,
		}, log.With(logger.String("strategy", "reader"))))
	}
	strategies = append(strategies, summary.NewPageStrategy(f, rules, cfg.FetchTimeout))

	return &Pipeline{
		Fetcher:  f,
		Metadata: metadata.NewResolver(f, cfg.FetchTimeout, log.With(logger.String("component", "metadata"))),
		Summary:  summary.NewChain(log.With(logger.String("component", "summary")), strategies...),
	}
}
