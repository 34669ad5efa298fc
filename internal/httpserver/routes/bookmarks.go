package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linksaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linksaver/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linksaver/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	// create and import share one budget per owner since both fetch pages
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateLimitBurst,
		RefillPerMin: d.RateLimitPerMin,
		TrustProxy:   d.TrustProxy,
	})

	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.RequireOwner(d.Verifier, d.Logger))

		r.Get("/", handlers.ListBookmarks(d))
		r.With(limit).Post("/", handlers.CreateBookmark(d))
		r.With(limit).Post("/import", handlers.ImportBookmarks(d))
		r.Put("/reorder", handlers.ReorderBookmarks(d))
		r.Put("/{id}", handlers.UpdateBookmark(d))
		r.Delete("/{id}", handlers.DeleteBookmark(d))
	})
}
