package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultRepo is the fallback target repository when PLUGMARKET_GITHUB_REPO is unset.
const DefaultRepo = "plugmarket/plugin-repo"

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// GitHub target repository.
	// GitHubToken intentionally has no fallback and is NOT required at boot:
	// submissions answer 500 while it is missing so the catalog endpoints keep working.
	GitHubToken     string // personal access token with contents:write on the target repo
	GitHubRepo      string // "owner/name", falls back to DefaultRepo
	GitHubBranch    string // target branch for all writes (default: main)
	GitHubAPIURL    string // Contents API base (overridable for tests)
	DownloadBaseURL string // base for published download_url values
	IndexPath       string // path of the shared index file in the repo

	IndexMaxRetries  int           // bounded re-read attempts on index sha conflict
	LegacyWriteOrder bool          // true => original ordering: files written before the duplicate check
	RefreshInterval  time.Duration // interval to refresh the index snapshot (default: 10m)
	SubmitTimeout    time.Duration // per-request timeout covering all three remote writes
	LockTTL          time.Duration // TTL of per-id submission reservations in redis

	CategoryFile string // path to categories.yaml (optional, empty = built-in catalog)

	// Redis (optional, empty addr = reservations and index cache disabled)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between connect retries
	RedisPingTimeout    time.Duration
	RedisPoolSize       int
	RedisConnectTimeout time.Duration
	RedisRetryInterval  time.Duration
	RedisWarnThreshold  int

	// Access restrictions (optional, empty = passthrough)
	AllowedHosts []string // restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	// Rate limiting on the submit route
	RateBurst  int
	RatePerMin int
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PLUGMARKET_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PLUGMARKET_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("PLUGMARKET_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PLUGMARKET_PRETTY_LOG", true),

		// GitHub
		GitHubToken:     getenv("PLUGMARKET_GITHUB_TOKEN", ""),
		GitHubRepo:      getenv("PLUGMARKET_GITHUB_REPO", DefaultRepo),
		GitHubBranch:    getenv("PLUGMARKET_GITHUB_BRANCH", "main"),
		GitHubAPIURL:    getenv("PLUGMARKET_GITHUB_API_URL", "https://api.github.com"),
		DownloadBaseURL: getenv("PLUGMARKET_DOWNLOAD_BASE_URL", "https://raw.githubusercontent.com"),
		IndexPath:       getenv("PLUGMARKET_INDEX_PATH", "plugins.json"),

		IndexMaxRetries:  getenvInt("PLUGMARKET_INDEX_MAX_RETRIES", 3),
		LegacyWriteOrder: mustBool("PLUGMARKET_LEGACY_WRITE_ORDER", false),
		RefreshInterval:  mustDuration("PLUGMARKET_REFRESH_INTERVAL", 10*time.Minute),
		SubmitTimeout:    mustDuration("PLUGMARKET_SUBMIT_TIMEOUT", 30*time.Second),
		LockTTL:          mustDuration("PLUGMARKET_LOCK_TTL", 2*time.Minute),

		CategoryFile: getenv("PLUGMARKET_CATEGORY_FILE", ""),

		// Redis settings
		RedisAddr:           getenv("PLUGMARKET_REDIS_ADDR", ""),
		RedisUser:           getenv("PLUGMARKET_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("PLUGMARKET_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("PLUGMARKET_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("PLUGMARKET_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("PLUGMARKET_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("PLUGMARKET_TRUST_PROXY", true),

		// Rate limiting
		RateBurst:  getenvInt("PLUGMARKET_RATE_BURST", 5),
		RatePerMin: getenvInt("PLUGMARKET_RATE_PER_MIN", 10),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.GitHubToken != "" {
			cfgCopy.GitHubToken = "***REDACTED***"
		}
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
