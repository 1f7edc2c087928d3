package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/templui/thumbnailer/internal/imaging"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string // Prefix for links in upload responses; empty keeps links relative
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Uploads
	UploadMaxSize          int64
	UploadMaxPixels        int64 // Largest width*height accepted before decoding
	RollbackPartialUploads bool  // Remove already written thumbnails when a later step fails

	// Storage: "local" (MEDIA_ROOT) or "s3" (S3-compatible: MinIO, AWS S3, Cloudflare R2, ...)
	StorageDriver string
	MediaRoot     string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for non-AWS providers

	// Observability (optional)
	SentryDSN      string
	MetricsEnabled bool
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Thumbnailer"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envString("APP_URL", ""),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/thumbnailer.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_time_format=sqlite"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Uploads
		UploadMaxSize:          envInt64("UPLOAD_MAX_SIZE", 10<<20), // 10MB
		UploadMaxPixels:        envInt64("UPLOAD_MAX_PIXELS", imaging.DefaultMaxPixels),
		RollbackPartialUploads: envBool("ROLLBACK_PARTIAL_UPLOADS", false),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", "local"),
		MediaRoot:     envString("MEDIA_ROOT", "./media"),

		// Observability
		SentryDSN:      envString("SENTRY_DSN", ""),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}

	// S3 credentials are only needed when objects go to a bucket
	if cfg.StorageDriver == "s3" {
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
		cfg.S3AccessKey = envString("S3_ACCESS_KEY", "")
		cfg.S3SecretKey = envString("S3_SECRET_KEY", "")
		cfg.S3Endpoint = envString("S3_ENDPOINT", "")
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction refuses settings that are only acceptable for local testing.
func validateProduction(cfg *Config) {
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 characters")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded, so the result is safe to log.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:                c.AppName,
		AppEnv:                 c.AppEnv,
		AppURL:                 c.AppURL,
		Port:                   c.Port,
		DBDriver:               c.DBDriver,
		UploadMaxSize:          c.UploadMaxSize,
		UploadMaxPixels:        c.UploadMaxPixels,
		RollbackPartialUploads: c.RollbackPartialUploads,
		StorageDriver:          c.StorageDriver,
		MediaRoot:              c.MediaRoot,
		S3Region:               c.S3Region,
		S3Bucket:               c.S3Bucket,
		S3Endpoint:             c.S3Endpoint,
		MetricsEnabled:         c.MetricsEnabled,
	}
}
