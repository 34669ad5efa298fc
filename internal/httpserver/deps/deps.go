package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
	"github.com/MrSnakeDoc/linksaver/internal/bookmarks"
	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/logger"
	"github.com/MrSnakeDoc/linksaver/internal/sources/siterules"
)

// BookmarkService is what the bookmark handlers need from the record manager.
type BookmarkService interface {
	Create(ctx context.Context, owner, rawURL string, tags []string) (*domain.Bookmark, error)
	List(ctx context.Context, owner, tag string) ([]domain.Bookmark, error)
	Delete(ctx context.Context, owner, id string) error
	UpdateTags(ctx context.Context, owner, id string, tags []string) error
	Reorder(ctx context.Context, owner string, ids []string) (int, error)
	Import(ctx context.Context, owner string, entries []bookmarks.ImportEntry) (bookmarks.ImportReport, error)
}

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to reach the ops endpoints
	AllowedCIDRS []string         // IPs allowed to reach the ops endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Bookmarks    BookmarkService
	Verifier     *auth.Verifier // verifies bearer tokens on /api routes
	Store        Pinger         // bookmark store, pinged by readyz and infra
	StoreBackend string         // "memory" | "sql" | "redis"

	SiteRules     *siterules.Registry
	SiteRulesFile string
	ReloadTrigger chan struct{} // manual site rules reload

	ReaderEnabled bool
	ReaderBaseURL string

	RateLimitBurst  int   // create/import burst per owner
	RateLimitPerMin int   // create/import refill per owner per minute
	MaxImportBytes  int64 // max size of an uploaded Homepage file
}
