// Package storetest holds the behaviour every store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/store"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) store.Store

// Run executes the shared suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("InsertAssignsID", func(t *testing.T) { testInsertAssignsID(t, newStore(t)) })
	t.Run("DuplicateURL", func(t *testing.T) { testDuplicateURL(t, newStore(t)) })
	t.Run("FindOrder", func(t *testing.T) { testFindOrder(t, newStore(t)) })
	t.Run("FindTag", func(t *testing.T) { testFindTag(t, newStore(t)) })
	t.Run("OwnerScoping", func(t *testing.T) { testOwnerScoping(t, newStore(t)) })
	t.Run("UpdateOne", func(t *testing.T) { testUpdateOne(t, newStore(t)) })
	t.Run("MissingPositionGuard", func(t *testing.T) { testMissingPositionGuard(t, newStore(t)) })
	t.Run("DeleteOne", func(t *testing.T) { testDeleteOne(t, newStore(t)) })
	t.Run("Count", func(t *testing.T) { testCount(t, newStore(t)) })
}

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func bookmark(owner, url string, pos *int, created time.Time, tags ...string) *domain.Bookmark {
	return &domain.Bookmark{
		OwnerKey:  owner,
		URL:       url,
		Title:     "Title " + url,
		Summary:   "Summary " + url,
		Tags:      tags,
		Position:  pos,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func mustInsert(t *testing.T, s store.Store, b *domain.Bookmark) *domain.Bookmark {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), b))
	return b
}

func ids(records []domain.Bookmark) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func testInsertAssignsID(t *testing.T, s store.Store) {
	ctx := context.Background()
	b := mustInsert(t, s, bookmark("alice", "https://a.com", domain.IntPtr(0), base, "go"))
	require.NotEmpty(t, b.ID)

	got, err := s.Find(ctx, store.Filter{OwnerKey: "alice", ID: b.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.com", got[0].URL)
	assert.Equal(t, "Title https://a.com", got[0].Title)
	assert.Equal(t, []string{"go"}, got[0].Tags)
	require.NotNil(t, got[0].Position)
	assert.Equal(t, 0, *got[0].Position)
	assert.True(t, base.Equal(got[0].CreatedAt))
}

func testDuplicateURL(t *testing.T, s store.Store) {
	mustInsert(t, s, bookmark("alice", "https://a.com", domain.IntPtr(0), base))

	err := s.Insert(context.Background(), bookmark("alice", "https://a.com", domain.IntPtr(1), base))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicate), "got %v", err)

	// same URL for another owner is fine
	mustInsert(t, s, bookmark("bob", "https://a.com", domain.IntPtr(0), base))
}

func testFindOrder(t *testing.T, s store.Store) {
	legacyOld := mustInsert(t, s, bookmark("alice", "https://legacy-old", nil, base))
	p1 := mustInsert(t, s, bookmark("alice", "https://p1", domain.IntPtr(1), base))
	legacyNew := mustInsert(t, s, bookmark("alice", "https://legacy-new", nil, base.Add(time.Hour)))
	p0 := mustInsert(t, s, bookmark("alice", "https://p0", domain.IntPtr(0), base))

	got, err := s.Find(context.Background(), store.Filter{OwnerKey: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{p0.ID, p1.ID, legacyNew.ID, legacyOld.ID}, ids(got))
}

func testFindTag(t *testing.T, s store.Store) {
	a := mustInsert(t, s, bookmark("alice", "https://a", domain.IntPtr(0), base, "go", "web"))
	mustInsert(t, s, bookmark("alice", "https://b", domain.IntPtr(1), base, "rust"))
	c := mustInsert(t, s, bookmark("alice", "https://c", domain.IntPtr(2), base, "go"))

	got, err := s.Find(context.Background(), store.Filter{OwnerKey: "alice", Tag: "go"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, ids(got))

	got, err = s.Find(context.Background(), store.Filter{OwnerKey: "alice", Tag: "missing"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testOwnerScoping(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := mustInsert(t, s, bookmark("alice", "https://a", domain.IntPtr(0), base))
	mustInsert(t, s, bookmark("bob", "https://b", domain.IntPtr(0), base))

	got, err := s.Find(ctx, store.Filter{OwnerKey: "bob"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://b", got[0].URL)

	matched, err := s.UpdateOne(ctx, store.Filter{OwnerKey: "bob", ID: a.ID}, store.Update{Position: domain.IntPtr(9)})
	require.NoError(t, err)
	assert.False(t, matched)

	deleted, err := s.DeleteOne(ctx, store.Filter{OwnerKey: "bob", ID: a.ID})
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err = s.Find(ctx, store.Filter{OwnerKey: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, *got[0].Position)
}

func testUpdateOne(t *testing.T, s store.Store) {
	ctx := context.Background()
	b := mustInsert(t, s, bookmark("alice", "https://a", domain.IntPtr(0), base, "old"))

	later := base.Add(24 * time.Hour)
	tags := []string{"new", "shiny"}
	matched, err := s.UpdateOne(ctx, store.Filter{OwnerKey: "alice", ID: b.ID}, store.Update{
		Position:  domain.IntPtr(5),
		Tags:      &tags,
		UpdatedAt: later,
	})
	require.NoError(t, err)
	assert.True(t, matched)

	got, err := s.Find(ctx, store.Filter{OwnerKey: "alice", ID: b.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5, *got[0].Position)
	assert.ElementsMatch(t, []string{"new", "shiny"}, got[0].Tags)
	assert.True(t, later.Equal(got[0].UpdatedAt))
	assert.True(t, base.Equal(got[0].CreatedAt))

	matched, err = s.UpdateOne(ctx, store.Filter{OwnerKey: "alice", ID: "does-not-exist"}, store.Update{Position: domain.IntPtr(1)})
	require.NoError(t, err)
	assert.False(t, matched)
}

func testMissingPositionGuard(t *testing.T, s store.Store) {
	ctx := context.Background()
	b := mustInsert(t, s, bookmark("alice", "https://a", nil, base))

	f := store.Filter{OwnerKey: "alice", ID: b.ID, MissingPosition: true}
	matched, err := s.UpdateOne(ctx, f, store.Update{Position: domain.IntPtr(3)})
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = s.UpdateOne(ctx, f, store.Update{Position: domain.IntPtr(7)})
	require.NoError(t, err)
	assert.False(t, matched, "a second repair must not overwrite the position")

	got, err := s.Find(ctx, store.Filter{OwnerKey: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 3, *got[0].Position)
}

func testDeleteOne(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := mustInsert(t, s, bookmark("alice", "https://a", domain.IntPtr(0), base))
	b := mustInsert(t, s, bookmark("alice", "https://b", domain.IntPtr(1), base))
	c := mustInsert(t, s, bookmark("alice", "https://c", domain.IntPtr(2), base))

	deleted, err := s.DeleteOne(ctx, store.Filter{OwnerKey: "alice", ID: b.ID})
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := s.Find(ctx, store.Filter{OwnerKey: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, c.ID}, ids(got))
	assert.Equal(t, 0, *got[0].Position)
	assert.Equal(t, 2, *got[1].Position, "siblings keep their positions")

	deleted, err = s.DeleteOne(ctx, store.Filter{OwnerKey: "alice", ID: b.ID})
	require.NoError(t, err)
	assert.False(t, deleted)

	// the URL is free again
	mustInsert(t, s, bookmark("alice", "https://b", domain.IntPtr(3), base))
}

func testCount(t *testing.T, s store.Store) {
	ctx := context.Background()
	n, err := s.Count(ctx, store.Filter{OwnerKey: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	mustInsert(t, s, bookmark("alice", "https://a", domain.IntPtr(0), base))
	mustInsert(t, s, bookmark("alice", "https://b", nil, base))
	mustInsert(t, s, bookmark("bob", "https://c", domain.IntPtr(0), base))

	n, err = s.Count(ctx, store.Filter{OwnerKey: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Count(ctx, store.Filter{OwnerKey: "alice", MissingPosition: true})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Count(ctx, store.Filter{OwnerKey: "alice", URL: "https://b"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
