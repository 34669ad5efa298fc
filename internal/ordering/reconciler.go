// Package ordering maintains the manual sort order of an owner's bookmarks.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/store"
)

// DefaultConcurrency bounds the number of in-flight updates of one batch.
const DefaultConcurrency = 8

// ErrReconcile reports that at least one update of a batch failed. Updates
// that succeeded before the failure stay in the store.
var ErrReconcile = errors.New("reconcile failed")

// Reconciler repairs missing positions and applies explicit reorders.
type Reconciler struct {
	store       store.Store
	logger      logger.Logger
	concurrency int
	now         func() time.Time
}

// NewReconciler creates a reconciler. concurrency <= 0 selects
// DefaultConcurrency.
func NewReconciler(s store.Store, log logger.Logger, concurrency int) *Reconciler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Reconciler{
		store:       s,
		logger:      log,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// BackfillMissingPositions gives every record of owner that lacks a position
// one past the current maximum, in read order. It looks at the whole owner
// set, never a tag filtered view, and returns the number of records updated.
// With nothing missing it performs no writes.
func (r *Reconciler) BackfillMissingPositions(ctx context.Context, owner string) (int, error) {
	records, err := r.store.Find(ctx, store.Filter{OwnerKey: owner})
	if err != nil {
		return 0, err
	}

	maxPos := -1
	var missing []string
	for i := range records {
		if records[i].Position == nil {
			missing = append(missing, records[i].ID)
			continue
		}
		if *records[i].Position > maxPos {
			maxPos = *records[i].Position
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	now := r.now()
	updates := make([]update, len(missing))
	for i, id := range missing {
		updates[i] = update{
			filter: store.Filter{OwnerKey: owner, ID: id, MissingPosition: true},
			change: store.Update{Position: domain.IntPtr(maxPos + 1 + i), UpdatedAt: now},
		}
	}

	updated, err := r.run(ctx, updates)
	if err != nil {
		r.logger.Error("position backfill failed",
			logger.String("owner", owner),
			logger.Int("missing", len(missing)),
			logger.Int("updated", updated),
			logger.Error(err))
		return updated, err
	}
	r.logger.Info("positions backfilled",
		logger.String("owner", owner),
		logger.Int("updated", updated))
	return updated, nil
}

// ApplyReorder sets position = index for every id in ids. Ids that do not
// belong to owner match nothing and are skipped. It returns the number of
// records matched. A nil ids is rejected; an empty one is a no-op.
func (r *Reconciler) ApplyReorder(ctx context.Context, owner string, ids []string) (int, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := r.now()
	updates := make([]update, len(ids))
	for i, id := range ids {
		updates[i] = update{
			filter: store.Filter{OwnerKey: owner, ID: id},
			change: store.Update{Position: domain.IntPtr(i), UpdatedAt: now},
		}
	}

	matched, err := r.run(ctx, updates)
	if err != nil {
		r.logger.Error("reorder failed",
			logger.String("owner", owner),
			logger.Int("requested", len(ids)),
			logger.Int("matched", matched),
			logger.Error(err))
		return matched, err
	}
	r.logger.Info("bookmarks reordered",
		logger.String("owner", owner),
		logger.Int("requested", len(ids)),
		logger.Int("matched", matched))
	return matched, nil
}

type update struct {
	filter store.Filter
	change store.Update
}

// run issues every update concurrently and waits for the whole batch. A
// failing update does not stop the others.
func (r *Reconciler) run(ctx context.Context, updates []update) (int, error) {
	var (
		matched atomic.Int64
		mu      sync.Mutex
		errs    []error
	)

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, u := range updates {
		g.Go(func() error {
			ok, err := r.store.UpdateOne(ctx, u.filter, u.change)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("update %s: %w", u.filter.ID, err))
				mu.Unlock()
				return nil
			}
			if ok {
				matched.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	n := int(matched.Load())
	if len(errs) > 0 {
		return n, fmt.Errorf("%w: %d of %d updates failed: %w",
			ErrReconcile, len(errs), len(updates), errors.Join(errs...))
	}
	return n, nil
}

func validateIDs(ids []string) error {
	if ids == nil {
		return fmt.Errorf("%w: bookmarkIds must be an array", domain.ErrValidation)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: bookmarkIds must not contain empty ids", domain.ErrValidation)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate bookmark id %q", domain.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
