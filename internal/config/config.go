package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends selectable through BOOKMARKS_STORE.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

const redacted = "***REDACTED***"

type Config struct {
	ListenPort      string        // ex: ":8000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (ex: 5s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	APIToken string // bearer token every /bookmarks request must carry

	Store      string // "sqlite" | "redis"
	SQLitePath string // database file used when Store is sqlite
	SeedFile   string // optional YAML seed, empty = no seeding

	// Redis
	RedisAddr     string        // ex: "localhost:6379", required when Store is redis
	RedisUser     string        // optional
	RedisPassword string        // optional
	RedisDB       int           // Redis DB number
	RedisDT       time.Duration // Redis dial timeout (ex: 5s)
	RedisRT       time.Duration // Redis read timeout (ex: 3s)
	RedisWT       time.Duration // Redis write timeout (ex: 3s)
	RedisPoolSize int           // Redis connection pool size

	// Backend readiness, applies to whichever store is selected
	ConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	WarnThreshold  int           // warn after this many attempts

	AllowedHosts []string // optional, restrict /bookmarks to specific Host headers
	AllowedCIDRS []string // optional, restrict ops routes to specific IPs or CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)

	RateLimitBurst  int // 0 disables rate limiting on /bookmarks
	RateLimitPerMin int // sustained requests per minute per client
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BOOKMARKS_LISTEN_PORT", ":8000"),
		ShutdownTimeout: mustDuration("BOOKMARKS_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("BOOKMARKS_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BOOKMARKS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BOOKMARKS_PRETTY_LOG", true),

		APIToken: requireEnv("BOOKMARKS_API_TOKEN"),

		// Storage
		Store:      strings.ToLower(getenv("BOOKMARKS_STORE", StoreSQLite)),
		SQLitePath: getenv("BOOKMARKS_SQLITE_PATH", "bookmarks.db"),
		SeedFile:   getenv("BOOKMARKS_SEED_FILE", ""),

		// Redis settings
		RedisAddr:     getenv("BOOKMARKS_REDIS_ADDR", ""),
		RedisUser:     getenv("BOOKMARKS_REDIS_USERNAME", ""),
		RedisPassword: getenv("BOOKMARKS_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("BOOKMARKS_REDIS_DB", 0),
		RedisDT:       mustDuration("BOOKMARKS_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:       mustDuration("BOOKMARKS_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:       mustDuration("BOOKMARKS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize: getenvInt("BOOKMARKS_REDIS_POOL_SIZE", 10),

		// Readiness
		ConnectTimeout: mustDuration("BOOKMARKS_CONNECT_TIMEOUT", 30*time.Second),
		RetryInterval:  mustDuration("BOOKMARKS_RETRY_INTERVAL", 2*time.Second),
		MaxWait:        mustDuration("BOOKMARKS_MAX_WAIT", 10*time.Second),
		PingTimeout:    mustDuration("BOOKMARKS_PING_TIMEOUT", 5*time.Second),
		WarnThreshold:  getenvInt("BOOKMARKS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("BOOKMARKS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("BOOKMARKS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("BOOKMARKS_TRUST_PROXY", false),

		RateLimitBurst:  getenvInt("BOOKMARKS_RATE_LIMIT_BURST", 0),
		RateLimitPerMin: getenvInt("BOOKMARKS_RATE_LIMIT_PER_MIN", 60),
	}

	switch cfg.Store {
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			panic("❌ FATAL: BOOKMARKS_SQLITE_PATH must not be empty")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			panic("❌ FATAL: BOOKMARKS_REDIS_ADDR is required when BOOKMARKS_STORE=redis")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown BOOKMARKS_STORE %q (want %q or %q)", cfg.Store, StoreSQLite, StoreRedis))
	}

	return cfg
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	c.APIToken = redacted
	if c.RedisPassword != "" {
		c.RedisPassword = redacted
	}
	if c.RedisUser != "" {
		c.RedisUser = redacted
	}
	return c
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
