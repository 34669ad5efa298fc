package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/sources/siterules"
)

// watchDebounce groups the burst of events an editor emits on save.
const watchDebounce = 500 * time.Millisecond

// SiteRulesReloader keeps the site rule registry in sync with its file. It
// reloads on a ticker, on a manual trigger and, when watching is enabled, on
// file changes.
type SiteRulesReloader struct {
	loader        *siterules.Loader
	registry      *siterules.Registry
	logger        logger.Logger
	interval      time.Duration
	watch         bool
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewSiteRulesReloader creates a reloader. An empty rules file leaves only
// the built-in rules in the registry.
func NewSiteRulesReloader(
	rulesFile string,
	registry *siterules.Registry,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
	watch bool,
) *SiteRulesReloader {
	return &SiteRulesReloader{
		loader:        siterules.NewLoader(rulesFile),
		registry:      registry,
		logger:        log,
		interval:      interval,
		watch:         watch,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the rules once, then keeps reloading in the background.
func (sr *SiteRulesReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	var (
		events  <-chan fsnotify.Event
		errs    <-chan error
		watcher *fsnotify.Watcher
	)
	if sr.watch && sr.loader.Path() != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			sr.logger.Warn("site rules watch disabled", logger.Error(err))
		} else if err := w.Add(filepath.Dir(sr.loader.Path())); err != nil {
			sr.logger.Warn("site rules watch disabled", logger.Error(err))
			_ = w.Close()
		} else {
			watcher = w
			events = w.Events
			errs = w.Errors
		}
	}

	go sr.loop(ctx, events, errs, watcher)
	return nil
}

func (sr *SiteRulesReloader) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, watcher *fsnotify.Watcher) {
	if watcher != nil {
		defer func() { _ = watcher.Close() }()
	}

	var tick <-chan time.Time
	if sr.interval > 0 {
		ticker := time.NewTicker(sr.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var debounce *time.Timer
	var debounced <-chan time.Time
	target := filepath.Clean(sr.loader.Path())

	for {
		select {
		case <-tick:
			sr.reloadAndLog(ctx, "periodic")
		case <-sr.manualTrigger:
			sr.logger.Info("manual reload triggered")
			sr.reloadAndLog(ctx, "manual")
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != target || !isContentChange(ev.Op) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			debounced = debounce.C
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			sr.logger.Warn("site rules watch error", logger.Error(err))
		case <-debounced:
			debounced = nil
			sr.reloadAndLog(ctx, "file change")
		case <-sr.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the reloader. It is safe to call more than once.
func (sr *SiteRulesReloader) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

// Reload reads the rules file and swaps the registry content.
func (sr *SiteRulesReloader) Reload(_ context.Context) error {
	if sr.loader.Path() == "" {
		sr.registry.Replace(nil)
		sr.logger.Debug("no site rules file configured, using built-in rules",
			logger.Int("count", sr.registry.Count()))
		return nil
	}

	rules, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load site rules: %w", err)
	}
	sr.registry.Replace(rules)

	sr.logger.Info("site rules reloaded",
		logger.String("file", sr.loader.Path()),
		logger.Int("loaded", len(rules)),
		logger.Int("active", sr.registry.Count()))
	return nil
}

func (sr *SiteRulesReloader) reloadAndLog(ctx context.Context, reason string) {
	if err := sr.Reload(ctx); err != nil {
		// the previous rule set stays active
		sr.logger.Error("failed to reload site rules",
			logger.String("trigger", reason),
			logger.Error(err))
	}
}

func isContentChange(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}
