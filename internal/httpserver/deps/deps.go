package deps

import (
	"time"

	"github.com/MrSnakeDoc/bookmarks/internal/domain"
	"github.com/MrSnakeDoc/bookmarks/internal/httpserver/mw"
	"github.com/MrSnakeDoc/bookmarks/internal/logger"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	Service        *domain.BookmarkService // bookmark resource logic
	StoreName      string                  // "sqlite" or "redis", reported by /infra
	APIToken       string                  // bearer token required on /bookmarks
	RequestTimeout time.Duration           // per-request deadline
	AllowedHosts   []string                // Host headers allowed on /bookmarks
	AllowedCIDRS   []string                // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy     bool                    // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateLimit      mw.RateLimitConfig      // per-client limit on /bookmarks
}
