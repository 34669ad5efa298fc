package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/linksaver/internal/version"
)

// Storage backends accepted by LINKSAVER_STORE.
const (
	BackendMemory   = "memory"
	BackendSQL      = "sql"
	BackendRedis    = "redis"
	defaultDatabase = "file:linksaver.db?_pragma=busy_timeout(5000)"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget, must cover the reader retries (ex: 3m)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	StoreBackend string // "memory" | "sql" | "redis"
	DatabaseDSN  string // sqlite file DSN or postgres:// URL (sql backend only)

	// Redis (redis backend only)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold  int           // warn after this many attempts

	// Identity
	AuthSecret string // HS256 secret used to verify bearer tokens

	// Acquisition pipeline
	FetchTimeout     time.Duration // page fetch timeout (metadata + page strategy)
	ReaderEnabled    bool          // false => skip the reader strategy entirely
	ReaderBaseURL    string        // ex: "https://r.jina.ai/"
	ReaderTimeout    time.Duration // per attempt
	ReaderAttempts   int           // total attempts, not retries
	ReaderRetryDelay time.Duration // fixed delay between attempts
	UserAgent        string
	MaxBodyBytes     int64

	// Site extraction rules
	SiteRulesFile  string        // optional yaml file, empty = built-in rules only
	ReloadInterval time.Duration // periodic rules reload
	WatchRules     bool          // reload when the rules file changes

	// Limits
	ReconcileConcurrency int // concurrent per-record updates during reorder/backfill
	ImportMaxEntries     int // max entries processed per import request
	RateLimitBurst       int // create/import burst per owner
	RateLimitPerMin      int // create/import refill per owner per minute

	AllowedHosts []string // optional, restrict ops endpoints to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment variables
// win over it.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKSAVER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKSAVER_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("LINKSAVER_REQUEST_TIMEOUT", 3*time.Minute),

		// Logging
		LogLevel:  getenv("LINKSAVER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKSAVER_PRETTY_LOG", true),

		// Storage
		StoreBackend: strings.ToLower(getenv("LINKSAVER_STORE", BackendSQL)),
		DatabaseDSN:  getenv("LINKSAVER_DATABASE_DSN", defaultDatabase),

		// Identity
		AuthSecret: requireEnv("LINKSAVER_AUTH_SECRET"),

		// Acquisition pipeline
		FetchTimeout:     mustDuration("LINKSAVER_FETCH_TIMEOUT", 10*time.Second),
		ReaderEnabled:    mustBool("LINKSAVER_READER_ENABLED", true),
		ReaderBaseURL:    getenv("LINKSAVER_READER_BASE_URL", "https://r.jina.ai/"),
		ReaderTimeout:    mustDuration("LINKSAVER_READER_TIMEOUT", 60*time.Second),
		ReaderAttempts:   getenvInt("LINKSAVER_READER_ATTEMPTS", 2),
		ReaderRetryDelay: mustDuration("LINKSAVER_READER_RETRY_DELAY", 2*time.Second),
		UserAgent:        getenv("LINKSAVER_USER_AGENT", version.UserAgent()),
		MaxBodyBytes:     int64(getenvInt("LINKSAVER_MAX_BODY_BYTES", 5<<20)),

		// Site rules
		SiteRulesFile:  getenv("LINKSAVER_SITE_RULES_FILE", ""),
		ReloadInterval: mustDuration("LINKSAVER_RELOAD_INTERVAL", 24*time.Hour),
		WatchRules:     mustBool("LINKSAVER_WATCH_RULES", true),

		// Limits
		ReconcileConcurrency: getenvInt("LINKSAVER_RECONCILE_CONCURRENCY", 8),
		ImportMaxEntries:     getenvInt("LINKSAVER_IMPORT_MAX_ENTRIES", 25),
		RateLimitBurst:       getenvInt("LINKSAVER_RATE_LIMIT_BURST", 10),
		RateLimitPerMin:      getenvInt("LINKSAVER_RATE_LIMIT_PER_MIN", 30),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINKSAVER_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKSAVER_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKSAVER_TRUST_PROXY", false),
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendSQL:
	case BackendRedis:
		cfg.RedisAddr = requireEnv("LINKSAVER_REDIS_ADDR")
		cfg.RedisUser = getenv("LINKSAVER_REDIS_USERNAME", "")
		cfg.RedisPassword = getenv("LINKSAVER_REDIS_PASSWORD", "")
		cfg.RedisDB = getenvInt("LINKSAVER_REDIS_DB", 0)
		cfg.RedisDT = mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
		cfg.RedisRT = mustDuration("REDIS_READ_TIMEOUT", 3*time.Second)
		cfg.RedisWT = mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)
		cfg.RedisMaxWait = mustDuration("REDIS_MAX_WAIT", 10*time.Second)
		cfg.RedisPingTimeout = mustDuration("REDIS_PING_TIMEOUT", 5*time.Second)
		cfg.RedisPoolSize = getenvInt("REDIS_POOL_SIZE", 10)
		cfg.RedisConnectTimeout = mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second)
		cfg.RedisRetryInterval = mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second)
		cfg.RedisWarnThreshold = getenvInt("REDIS_WARN_THRESHOLD", 3)
	default:
		panic(fmt.Sprintf("❌ FATAL: LINKSAVER_STORE must be one of memory, sql, redis (got %q)", cfg.StoreBackend))
	}

	if cfg.ReaderAttempts < 1 {
		panic("❌ FATAL: LINKSAVER_READER_ATTEMPTS must be >= 1")
	}
	if cfg.ReconcileConcurrency < 1 {
		cfg.ReconcileConcurrency = 1
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.AuthSecret = "***REDACTED***"
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		cfgCopy.DatabaseDSN = redactDSN(cfg.DatabaseDSN)
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

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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

// redactDSN hides the userinfo part of a URL-style DSN.
// Example: "postgres://u:p@db/links" -> "postgres://***@db/links"
func redactDSN(dsn string) string {
	scheme := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if scheme == -1 || at == -1 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
