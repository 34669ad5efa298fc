// Package bookmarks implements the owner scoped bookmark operations.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/store"
)

// DefaultImportMaxEntries caps the size of one import.
const DefaultImportMaxEntries = 25

// Summarizer produces the summary of a page. It never fails.
type Summarizer interface {
	Summarize(ctx context.Context, rawURL string) string
}

// MetadataResolver resolves the title and icon of a page. It never fails.
type MetadataResolver interface {
	Resolve(ctx context.Context, rawURL string) domain.Metadata
}

// Reconciler maintains positions.
type Reconciler interface {
	BackfillMissingPositions(ctx context.Context, owner string) (int, error)
	ApplyReorder(ctx context.Context, owner string, ids []string) (int, error)
}

// Options tunes a Service.
type Options struct {
	ImportMaxEntries int
}

// Service is the bookmark record manager.
type Service struct {
	store      store.Store
	metadata   MetadataResolver
	summarizer Summarizer
	reconciler Reconciler
	logger     logger.Logger
	opts       Options
	now        func() time.Time
}

// NewService wires a service.
func NewService(s store.Store, meta MetadataResolver, sum Summarizer, rec Reconciler, log logger.Logger, opts Options) *Service {
	if opts.ImportMaxEntries <= 0 {
		opts.ImportMaxEntries = DefaultImportMaxEntries
	}
	return &Service{
		store:      s,
		metadata:   meta,
		summarizer: sum,
		reconciler: rec,
		logger:     log,
		opts:       opts,
		now:        time.Now,
	}
}

// Create saves rawURL for owner. A URL the owner already saved is rejected
// before any page is fetched. Title, icon and summary are resolved
// concurrently and the record is appended at the end of the owner's order.
func (s *Service) Create(ctx context.Context, owner, rawURL string, tags []string) (*domain.Bookmark, error) {
	if owner == "" {
		return nil, domain.ErrUnauthorized
	}
	if _, err := domain.ParseURL(rawURL); err != nil {
		return nil, err
	}
	rawURL = strings.TrimSpace(rawURL)

	existing, err := s.store.Count(ctx, store.Filter{OwnerKey: owner, URL: rawURL})
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicate, rawURL)
	}

	var (
		meta    domain.Metadata
		summary string
		g       errgroup.Group
	)
	g.Go(func() error {
		meta = s.metadata.Resolve(ctx, rawURL)
		return nil
	})
	g.Go(func() error {
		summary = s.summarizer.Summarize(ctx, rawURL)
		return nil
	})
	_ = g.Wait()

	if meta.Title == "" {
		meta.Title = domain.UntitledTitle
	}

	// Two concurrent creates for one owner may read the same count and share
	// a position. Reorder settles it.
	position, err := s.store.Count(ctx, store.Filter{OwnerKey: owner})
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &domain.Bookmark{
		OwnerKey:  owner,
		URL:       rawURL,
		Title:     meta.Title,
		Favicon:   meta.Favicon,
		Summary:   summary,
		Tags:      domain.NormalizeTags(tags),
		Position:  domain.IntPtr(position),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("bookmark created",
		logger.String("owner", owner),
		logger.String("id", b.ID),
		logger.String("url", rawURL),
		logger.Int("position", position))
	return b, nil
}

// List returns the owner's bookmarks in order, optionally restricted to tag.
// Records without a position are repaired first, then the list is read again.
func (s *Service) List(ctx context.Context, owner, tag string) ([]domain.Bookmark, error) {
	if owner == "" {
		return nil, domain.ErrUnauthorized
	}
	filter := store.Filter{OwnerKey: owner, Tag: strings.TrimSpace(tag)}

	records, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if !anyMissingPosition(records) {
		return records, nil
	}

	if _, err := s.reconciler.BackfillMissingPositions(ctx, owner); err != nil {
		return nil, err
	}
	return s.store.Find(ctx, filter)
}

// Delete removes one bookmark. Positions of the remaining records are left
// untouched.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if owner == "" {
		return domain.ErrUnauthorized
	}
	if id == "" {
		return fmt.Errorf("%w: bookmark id is required", domain.ErrValidation)
	}

	deleted, err := s.store.DeleteOne(ctx, store.Filter{OwnerKey: owner, ID: id})
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.logger.Info("bookmark deleted",
		logger.String("owner", owner),
		logger.String("id", id))
	return nil
}

// UpdateTags replaces the tag set of one bookmark.
func (s *Service) UpdateTags(ctx context.Context, owner, id string, tags []string) error {
	if owner == "" {
		return domain.ErrUnauthorized
	}
	if id == "" {
		return fmt.Errorf("%w: bookmark id is required", domain.ErrValidation)
	}
	if tags == nil {
		return fmt.Errorf("%w: tags must be an array", domain.ErrValidation)
	}

	normalized := domain.NormalizeTags(tags)
	matched, err := s.store.UpdateOne(ctx,
		store.Filter{OwnerKey: owner, ID: id},
		store.Update{Tags: &normalized, UpdatedAt: s.now()})
	if err != nil {
		return err
	}
	if !matched {
		return domain.ErrNotFound
	}
	return nil
}

// Reorder assigns position = index to every listed bookmark of owner and
// returns how many matched.
func (s *Service) Reorder(ctx context.Context, owner string, ids []string) (int, error) {
	if owner == "" {
		return 0, domain.ErrUnauthorized
	}
	return s.reconciler.ApplyReorder(ctx, owner, ids)
}

// ImportEntry is one link of an import batch.
type ImportEntry struct {
	URL  string
	Tags []string
}

// ImportFailure explains why one entry was not created.
type ImportFailure struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ImportReport summarises an import.
type ImportReport struct {
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Failed  []ImportFailure `json:"failed"`
}

// Import creates entries one after the other. URLs already saved are
// skipped. It stops early when ctx is done and reports what was processed.
func (s *Service) Import(ctx context.Context, owner string, entries []ImportEntry) (ImportReport, error) {
	report := ImportReport{Failed: []ImportFailure{}}
	if owner == "" {
		return report, domain.ErrUnauthorized
	}
	if len(entries) == 0 {
		return report, fmt.Errorf("%w: nothing to import", domain.ErrValidation)
	}
	if len(entries) > s.opts.ImportMaxEntries {
		return report, fmt.Errorf("%w: import holds %d entries, limit is %d",
			domain.ErrValidation, len(entries), s.opts.ImportMaxEntries)
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		_, err := s.Create(ctx, owner, e.URL, e.Tags)
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, domain.ErrDuplicate):
			report.Skipped++
		case errors.Is(err, domain.ErrValidation):
			report.Failed = append(report.Failed, ImportFailure{URL: e.URL, Error: err.Error()})
		default:
			// store failures abort the batch
			return report, err
		}
	}

	s.logger.Info("bookmarks imported",
		logger.String("owner", owner),
		logger.Int("created", report.Created),
		logger.Int("skipped", report.Skipped),
		logger.Int("failed", len(report.Failed)))
	return report, nil
}

func anyMissingPosition(records []domain.Bookmark) bool {
	for i := range records {
		if !records[i].HasPosition() {
			return true
		}
	}
	return false
}
