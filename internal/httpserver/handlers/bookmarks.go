package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
	"github.com/MrSnakeDoc/linksaver/internal/bookmarks"
	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linksaver/internal/sources/homepage"
)

// DefaultMaxImportBytes caps an uploaded Homepage file.
const DefaultMaxImportBytes = 256 << 10

type createRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

type createResponse struct {
	Message  string           `json:"message"`
	Bookmark *domain.Bookmark `json:"bookmark"`
}

type listResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type updateRequest struct {
	Tags []string `json:"tags"`
}

type reorderRequest struct {
	BookmarkIDs []string `json:"bookmarkIds"`
}

type reorderResponse struct {
	Message      string `json:"message"`
	UpdatedCount int    `json:"updatedCount"`
}

func owner(r *http.Request) string {
	o, _ := auth.OwnerFromContext(r.Context())
	return o
}

// CreateBookmark handles POST /api/bookmarks.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		b, err := d.Bookmarks.Create(r.Context(), owner(r), req.URL, req.Tags)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, createResponse{
			Message:  "Bookmark saved successfully",
			Bookmark: b,
		})
	}
}

// ListBookmarks handles GET /api/bookmarks?tag=.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := d.Bookmarks.List(r.Context(), owner(r), r.URL.Query().Get("tag"))
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		if records == nil {
			records = []domain.Bookmark{}
		}
		writeJSON(w, http.StatusOK, listResponse{Bookmarks: records})
	}
}

// UpdateBookmark handles PUT /api/bookmarks/{id}. Only tags can change.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		if err := d.Bookmarks.UpdateTags(r.Context(), owner(r), chi.URLParam(r, "id"), req.Tags); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Bookmark updated successfully"})
	}
}

// DeleteBookmark handles DELETE /api/bookmarks/{id}.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bookmarks.Delete(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Bookmark deleted successfully"})
	}
}

// ReorderBookmarks handles PUT /api/bookmarks/reorder.
func ReorderBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, d, err)
			return
		}

		n, err := d.Bookmarks.Reorder(r.Context(), owner(r), req.BookmarkIDs)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, reorderResponse{
			Message:      "Bookmarks reordered successfully",
			UpdatedCount: n,
		})
	}
}

// ImportBookmarks handles POST /api/bookmarks/import. The body is a Homepage
// bookmarks.yaml or services.yaml file; each group becomes a tag.
func ImportBookmarks(d deps.Deps) http.HandlerFunc {
	limit := d.MaxImportBytes
	if limit <= 0 {
		limit = DefaultMaxImportBytes
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
					Error: fmt.Sprintf("import file exceeds %d bytes", limit),
				})
				return
			}
			writeError(w, r, d, fmt.Errorf("%w: failed to read body", domain.ErrValidation))
			return
		}

		parsed, err := homepage.Parse(data)
		if err != nil {
			writeError(w, r, d, fmt.Errorf("%w: %v", domain.ErrValidation, err))
			return
		}

		entries := make([]bookmarks.ImportEntry, len(parsed))
		for i, e := range parsed {
			entries[i] = bookmarks.ImportEntry{URL: e.URL, Tags: e.Tags}
		}

		report, err := d.Bookmarks.Import(r.Context(), owner(r), entries)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}
