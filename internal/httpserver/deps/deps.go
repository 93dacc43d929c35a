package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/seek/internal/auth"
	"github.com/MrSnakeDoc/seek/internal/bangs"
	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/index"
	"github.com/MrSnakeDoc/seek/internal/instant"
	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/search"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
)

// Pinger is a backing service that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SettingsStore persists display preferences.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (domain.UserSettings, error)
	Save(ctx context.Context, s domain.UserSettings) (domain.UserSettings, error)
}

// HistoryStore persists search history.
type HistoryStore interface {
	Add(ctx context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error)
	List(ctx context.Context, userID string, limit, offset int) ([]domain.HistoryEntry, error)
	Delete(ctx context.Context, userID, id string) error
	Clear(ctx context.Context, userID string) (int64, error)
}

// Searcher is the metasearch backend.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (search.Response, error)
	Autocomplete(ctx context.Context, text string) ([]string, error)
	Ping(ctx context.Context) error
	State() string
}

// WeatherLookup resolves weather instant answers.
type WeatherLookup interface {
	Lookup(ctx context.Context, place string) (instant.Weather, error)
}

// UsageCounter records bang redirects.
type UsageCounter interface {
	IncrementUsage(ctx context.Context, shortcut string) error
	GetUsageStats(ctx context.Context, n int) ([]redisstore.UsageStat, error)
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access admin endpoints
	AllowedCIDRS   []string         // IPs allowed to access readyz/infra/reload endpoints
	AllowedOrigins []string         // CORS origins allowed to call /api
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration    // per-request timeout

	RateLimitBurst     int // /api/search token bucket size per client IP
	RateLimitPerMinute int // /api/search refill rate per client IP

	FrontendURL string // where non-bang /search queries go, query appended

	Catalog  *index.CatalogIndex // live bang catalog
	Bangs    *bangs.Service
	Auth     *auth.Service
	Settings SettingsStore
	History  HistoryStore
	Search   Searcher
	Weather  WeatherLookup // nil when weather answers are disabled
	Usage    UsageCounter  // nil without Redis

	Postgres Pinger
	Redis    Pinger // nil when Redis is unavailable

	ReloadTrigger chan struct{} // Channel to trigger a manual catalog reload
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
