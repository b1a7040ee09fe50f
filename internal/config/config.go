package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"quill/internal/store"
)

const (
	MediaDriverLocal = "local"
	MediaDriverS3    = "s3"
)

// Config holds runtime configuration for the API server and quillctl.
type Config struct {
	ListenAddr  string
	StoreDriver string
	StorePath   string
	DatabaseURL string

	MediaDriver       string
	UploadDir         string
	S3Bucket          string
	S3Prefix          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3ForcePathStyle  bool

	MaxUploadBytes     int64
	MaxBodyBytes       int64
	CORSAllowedOrigins []string

	RateLimitWindow time.Duration
	RateLimitRead   int
	RateLimitWrite  int

	SweepEnabled  bool
	SweepDelay    time.Duration
	SweepInterval time.Duration
	SweepMinAge   time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	LogLevel    string
	LogFormat   string
	GopsEnabled bool
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:        getenv("LISTEN_ADDR", ":5000"),
		StoreDriver:       strings.ToLower(getenv("STORE_DRIVER", store.DriverJSON)),
		DatabaseURL:       getenv("DATABASE_URL", ""),
		MediaDriver:       strings.ToLower(getenv("MEDIA_DRIVER", MediaDriverLocal)),
		UploadDir:         getenv("UPLOAD_DIR", "./uploads"),
		S3Bucket:          getenv("S3_BUCKET", ""),
		S3Prefix:          getenv("S3_PREFIX", ""),
		S3Region:          getenv("S3_REGION", "us-east-1"),
		S3Endpoint:        getenv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getenv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY", ""),
		S3ForcePathStyle:  getenvBool("S3_FORCE_PATH_STYLE", false),
		MaxUploadBytes:    getenvInt64("MAX_UPLOAD_BYTES", 50*1024*1024),
		MaxBodyBytes:      getenvInt64("MAX_BODY_BYTES", 50*1024*1024),
		RateLimitWindow:   getenvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitRead:     getenvInt("RATE_LIMIT_READ", 600),
		RateLimitWrite:    getenvInt("RATE_LIMIT_WRITE", 120),
		SweepEnabled:      getenvBool("SWEEP_ENABLED", true),
		SweepDelay:        getenvDuration("SWEEP_DELAY", 30*time.Second),
		SweepInterval:     getenvDuration("SWEEP_INTERVAL", time.Hour),
		SweepMinAge:       getenvDuration("SWEEP_MIN_AGE", 10*time.Minute),
		HTTPReadTimeout:   getenvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
		HTTPWriteTimeout:  getenvDuration("HTTP_WRITE_TIMEOUT", 120*time.Second),
		HTTPIdleTimeout:   getenvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		LogLevel:          strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:         strings.ToLower(getenv("LOG_FORMAT", "text")),
		GopsEnabled:       getenvBool("GOPS_ENABLED", false),
	}
	cfg.StorePath = getenv("STORE_PATH", DefaultStorePath(cfg.StoreDriver))
	cfg.CORSAllowedOrigins = parseList(getenv("CORS_ALLOWED_ORIGINS", "*"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	switch cfg.StoreDriver {
	case store.DriverJSON, store.DriverBolt, store.DriverSQLite:
		if strings.TrimSpace(cfg.StorePath) == "" {
			return Config{}, fmt.Errorf("STORE_PATH cannot be empty")
		}
	case store.DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for store driver %q", cfg.StoreDriver)
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	switch cfg.MediaDriver {
	case MediaDriverLocal:
		if strings.TrimSpace(cfg.UploadDir) == "" {
			return Config{}, fmt.Errorf("UPLOAD_DIR cannot be empty")
		}
	case MediaDriverS3:
		if cfg.S3Bucket == "" {
			return Config{}, fmt.Errorf("S3_BUCKET is required for media driver %q", cfg.MediaDriver)
		}
	default:
		return Config{}, fmt.Errorf("unknown MEDIA_DRIVER %q", cfg.MediaDriver)
	}

	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 50 * 1024 * 1024
	}
	if cfg.RateLimitRead < 0 {
		cfg.RateLimitRead = 0
	}
	if cfg.RateLimitWrite < 0 {
		cfg.RateLimitWrite = 0
	}
	if cfg.SweepInterval < 0 {
		cfg.SweepInterval = 0
	}
	if cfg.SweepDelay < 0 {
		cfg.SweepDelay = 0
	}
	if cfg.SweepMinAge < 0 {
		cfg.SweepMinAge = 0
	}

	return cfg, nil
}

// DefaultStorePath returns the file a file-backed store driver uses when
// STORE_PATH is not set. Postgres has no path.
func DefaultStorePath(driver string) string {
	switch driver {
	case store.DriverBolt:
		return "./data/blogs.bolt"
	case store.DriverSQLite:
		return "./data/blogs.db"
	case store.DriverPostgres:
		return ""
	default:
		return "./data/blogs.json"
	}
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseList(raw string) []string {
	replacer := strings.NewReplacer("\n", ",", ";", ",")
	normalized := replacer.Replace(raw)
	parts := strings.Split(normalized, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		p := strings.TrimSpace(part)
		key := strings.ToLower(p)
		if p == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
