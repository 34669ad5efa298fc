// Package app wires the configuration, the store, the acquisition pipeline
// and the HTTP server together.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
	"github.com/MrSnakeDoc/linksaver/internal/bookmarks"
	"github.com/MrSnakeDoc/linksaver/internal/config"
	"github.com/MrSnakeDoc/linksaver/internal/httpserver"
	"github.com/MrSnakeDoc/linksaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/ordering"
	"github.com/MrSnakeDoc/linksaver/internal/scheduler"
	"github.com/MrSnakeDoc/linksaver/internal/sources/siterules"
	"github.com/MrSnakeDoc/linksaver/internal/store"
	"github.com/MrSnakeDoc/linksaver/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    store.Store
	reloader *scheduler.SiteRulesReloader
}

// New builds the application. It fails fast when the store is unreachable
// or the auth secret is unusable.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	verifier, err := auth.NewVerifier(cfg.AuthSecret)
	if err != nil {
		return nil, err
	}

	s, err := OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	rules := siterules.NewRegistry()
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewSiteRulesReloader(
		cfg.SiteRulesFile,
		rules,
		loggerClient.With(logger.String("component", "siterules")),
		cfg.ReloadInterval,
		reloadTrigger,
		cfg.WatchRules,
	)

	pipeline := NewPipeline(cfg, rules, loggerClient)
	reconciler := ordering.NewReconciler(s, loggerClient.With(logger.String("component", "ordering")), cfg.ReconcileConcurrency)
	svc := bookmarks.NewService(s, pipeline.Metadata, pipeline.Summary, reconciler, loggerClient,
		bookmarks.Options{ImportMaxEntries: cfg.ImportMaxEntries})

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Bookmarks:       svc,
		Verifier:        verifier,
		Store:           s,
		StoreBackend:    cfg.StoreBackend,
		SiteRules:       rules,
		SiteRulesFile:   cfg.SiteRulesFile,
		ReloadTrigger:   reloadTrigger,
		ReaderEnabled:   cfg.ReaderEnabled,
		ReaderBaseURL:   cfg.ReaderBaseURL,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		store:    s,
		reloader: reloader,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	a.logger.Infof("Starting LinkSaver %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("LinkSaver %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		a.closeStore()
		return fmt.Errorf("failed to start site rules reloader: %w", err)
	}
	a.logger.Info("site rules reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.Bool("watch", a.cfg.WatchRules))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeStore()
	if runErr == nil {
		a.logger.Info("LinkSaver stopped cleanly")
	}
	return runErr
}

func (a *App) closeStore() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", logger.Error(err))
		return
	}
	a.logger.Info("store closed cleanly", logger.String("backend", a.cfg.StoreBackend))
}
