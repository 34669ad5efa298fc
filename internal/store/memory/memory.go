// Package memory is an in-process bookmark store. It backs single-instance
// deployments without persistence and the unit tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps bookmarks in maps guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Bookmark // ID -> Bookmark
	urls    map[ownerURL]string         // (owner, url) -> ID
	now     func() time.Time
}

type ownerURL struct {
	owner string
	url   string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		records: make(map[string]*domain.Bookmark),
		urls:    make(map[ownerURL]string),
		now:     time.Now,
	}
}

// Insert stores a copy of b, assigning ID and timestamps when unset.
func (s *Store) Insert(_ context.Context, b *domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ownerURL{owner: b.OwnerKey, url: b.URL}
	if _, exists := s.urls[key]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, b.URL)
	}

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, exists := s.records[b.ID]; exists {
		return fmt.Errorf("%w: id %s", domain.ErrDuplicate, b.ID)
	}
	now := s.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	b.Tags = domain.NormalizeTags(b.Tags)

	s.records[b.ID] = b.Clone()
	s.urls[key] = b.ID
	return nil
}

// Find returns copies of the matching records in listing order.
func (s *Store) Find(_ context.Context, f store.Filter) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Bookmark, 0)
	for _, b := range s.records {
		if store.Matches(b, f) {
			out = append(out, *b.Clone())
		}
	}
	store.Sort(out)
	return out, nil
}

// UpdateOne applies u to the first record matching f.
func (s *Store) UpdateOne(_ context.Context, f store.Filter, u store.Update) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findOneLocked(f)
	if b == nil {
		return false, nil
	}
	store.Apply(b, u)
	return true, nil
}

// DeleteOne removes the first record matching f.
func (s *Store) DeleteOne(_ context.Context, f store.Filter) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.findOneLocked(f)
	if b == nil {
		return false, nil
	}
	delete(s.records, b.ID)
	delete(s.urls, ownerURL{owner: b.OwnerKey, url: b.URL})
	return true, nil
}

// Count returns the number of matching records.
func (s *Store) Count(_ context.Context, f store.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, b := range s.records {
		if store.Matches(b, f) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) findOneLocked(f store.Filter) *domain.Bookmark {
	if f.ID != "" {
		b, ok := s.records[f.ID]
		if !ok || !store.Matches(b, f) {
			return nil
		}
		return b
	}
	for _, b := range s.records {
		if store.Matches(b, f) {
			return b
		}
	}
	return nil
}
