// Package store defines the document store used for bookmarks and the
// helpers shared by its backends.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
)

// Filter selects records. OwnerKey is mandatory; every other field narrows
// the selection when set.
type Filter struct {
	OwnerKey string
	ID       string
	URL      string
	Tag      string

	// MissingPosition restricts to records without a position. Used as an
	// update guard so a repair never overwrites a position already set.
	MissingPosition bool
}

// Update is a partial update. Nil fields are left untouched.
type Update struct {
	Position  *int
	Tags      *[]string
	UpdatedAt time.Time
}

// Store is the document store. Find returns records sorted by position
// ascending, records without a position last, ties broken by creation time
// descending. UpdateOne and DeleteOne report whether a record matched.
type Store interface {
	Insert(ctx context.Context, b *domain.Bookmark) error
	Find(ctx context.Context, f Filter) ([]domain.Bookmark, error)
	UpdateOne(ctx context.Context, f Filter, u Update) (bool, error)
	DeleteOne(ctx context.Context, f Filter) (bool, error)
	Count(ctx context.Context, f Filter) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// Matches reports whether b is selected by f.
func Matches(b *domain.Bookmark, f Filter) bool {
	if b.OwnerKey != f.OwnerKey {
		return false
	}
	if f.ID != "" && b.ID != f.ID {
		return false
	}
	if f.URL != "" && b.URL != f.URL {
		return false
	}
	if f.Tag != "" && !domain.HasTag(b.Tags, f.Tag) {
		return false
	}
	if f.MissingPosition && b.Position != nil {
		return false
	}
	return true
}

// Apply writes u into b.
func Apply(b *domain.Bookmark, u Update) {
	if u.Position != nil {
		p := *u.Position
		b.Position = &p
	}
	if u.Tags != nil {
		b.Tags = domain.NormalizeTags(*u.Tags)
	}
	if !u.UpdatedAt.IsZero() {
		b.UpdatedAt = u.UpdatedAt
	}
}

// Less is the listing order.
func Less(a, b *domain.Bookmark) bool {
	switch {
	case a.Position != nil && b.Position != nil:
		if *a.Position != *b.Position {
			return *a.Position < *b.Position
		}
	case a.Position != nil:
		return true
	case b.Position != nil:
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Sort orders records in place with Less.
func Sort(records []domain.Bookmark) {
	sort.SliceStable(records, func(i, j int) bool {
		return Less(&records[i], &records[j])
	})
}
