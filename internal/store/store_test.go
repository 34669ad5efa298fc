package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
)

func TestSort(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.Bookmark{
		{ID: "legacy-old", CreatedAt: t0},
		{ID: "p2", Position: domain.IntPtr(2), CreatedAt: t0},
		{ID: "legacy-new", CreatedAt: t0.Add(time.Hour)},
		{ID: "p0", Position: domain.IntPtr(0), CreatedAt: t0},
		{ID: "p1-old", Position: domain.IntPtr(1), CreatedAt: t0},
		{ID: "p1-new", Position: domain.IntPtr(1), CreatedAt: t0.Add(time.Minute)},
	}

	Sort(records)

	var got []string
	for _, r := range records {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"p0", "p1-new", "p1-old", "p2", "legacy-new", "legacy-old"}, got)
}

func TestMatches(t *testing.T) {
	b := &domain.Bookmark{ID: "1", OwnerKey: "alice", URL: "https://a.com", Tags: []string{"go"}}

	tests := []struct {
		name string
		f    Filter
		want bool
	}{
		{"owner only", Filter{OwnerKey: "alice"}, true},
		{"other owner", Filter{OwnerKey: "bob"}, false},
		{"empty owner never matches", Filter{}, false},
		{"id", Filter{OwnerKey: "alice", ID: "1"}, true},
		{"wrong id", Filter{OwnerKey: "alice", ID: "2"}, false},
		{"url", Filter{OwnerKey: "alice", URL: "https://a.com"}, true},
		{"tag", Filter{OwnerKey: "alice", Tag: "go"}, true},
		{"missing tag", Filter{OwnerKey: "alice", Tag: "rust"}, false},
		{"missing position", Filter{OwnerKey: "alice", MissingPosition: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(b, tt.f))
		})
	}

	b.Position = domain.IntPtr(0)
	assert.False(t, Matches(b, Filter{OwnerKey: "alice", MissingPosition: true}))
}

func TestApply(t *testing.T) {
	now := time.Now()
	b := &domain.Bookmark{Tags: []string{"a"}}
	tags := []string{" b ", "b", "c"}

	Apply(b, Update{Position: domain.IntPtr(4), Tags: &tags, UpdatedAt: now})

	assert.Equal(t, 4, *b.Position)
	assert.Equal(t, []string{"b", "c"}, b.Tags)
	assert.Equal(t, now, b.UpdatedAt)
}
