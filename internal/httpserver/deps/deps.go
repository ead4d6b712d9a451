package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plugmarket/plugmarket/internal/github"
	"github.com/plugmarket/plugmarket/internal/index"
	"github.com/plugmarket/plugmarket/internal/logger"
	"github.com/plugmarket/plugmarket/internal/sources/catalog"
	redisstore "github.com/plugmarket/plugmarket/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts []string // Host headers allowed on ops endpoints
	AllowedCIDRS []string // IPs allowed on ops endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy

	RedisClient *redis.Client      // Redis client connection (nil = reservations/cache disabled)
	Store       *redisstore.Store  // Reservation + index cache store (nil when redis disabled)
	MemoryIndex *index.MemoryIndex // In-memory index snapshot
	Contents    *github.Client     // Contents API client (nil when no token configured)
	Catalog     *catalog.Catalog   // Category labels + fallback

	DownloadBaseURL  string        // base for published download_url values
	IndexPath        string        // path of plugins.json in the repo
	IndexMaxRetries  int           // bounded retries on index sha conflict
	LegacyWriteOrder bool          // original ordering: files before duplicate check
	LockTTL          time.Duration // TTL for per-id submission reservations

	RefreshTrigger chan struct{} // Channel to trigger a manual index refresh

	RateBurst  int // submit route: token bucket burst
	RatePerMin int // submit route: refill per IP per minute
}
