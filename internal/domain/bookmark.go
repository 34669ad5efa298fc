package domain

import "time"

// UntitledTitle is stored when no title could be resolved for a page.
const UntitledTitle = "Untitled"

// Bookmark is a saved URL enriched with metadata and a summary, owned by a
// single user and placed in that user's manual ordering.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque identifier assigned by the store on insert.
	ID string `json:"id"`

	// OwnerKey scopes every operation. Records of different owners never
	// interact.
	OwnerKey string `json:"ownerKey"`

	// URL is absolute and unique per owner.
	URL string `json:"url"`

	// ─────────────────────────────
	// Enrichment
	// ─────────────────────────────

	// Title is the page <title>, or UntitledTitle.
	Title string `json:"title"`

	// Favicon is an absolute icon URL, empty when unresolved.
	Favicon string `json:"favicon,omitempty"`

	// Summary is the best-effort description of the page.
	Summary string `json:"summary"`

	// ─────────────────────────────
	// Organisation
	// ─────────────────────────────

	// Tags has set semantics; order is irrelevant.
	Tags []string `json:"tags"`

	// Position is the manual sort key. Nil marks a legacy record saved
	// before ordering existed; it is repaired on the next listing.
	Position *int `json:"order,omitempty"`

	// ─────────────────────────────
	// Timestamps
	// ─────────────────────────────

	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is bumped on every mutation (tags, reorder, backfill).
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasPosition reports whether the record already carries a sort key.
func (b *Bookmark) HasPosition() bool {
	return b.Position != nil
}

// Clone returns a deep copy, so stores can hand out records without sharing
// the tag slice or position pointer.
func (b *Bookmark) Clone() *Bookmark {
	c := *b
	if b.Tags != nil {
		c.Tags = append([]string(nil), b.Tags...)
	}
	if b.Position != nil {
		p := *b.Position
		c.Position = &p
	}
	return &c
}

// Metadata is what the metadata resolver learns about a page.
type Metadata struct {
	Title   string `json:"title"`
	Favicon string `json:"favicon"`
}

// IntPtr is a small helper for building positions.
func IntPtr(v int) *int { return &v }
