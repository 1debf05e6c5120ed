package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream API
	UpstreamURL     string
	UpstreamTimeout time.Duration

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Reports
	Timezone *time.Location
	LogoPath string

	// Optional HS256 verification of the bearer token
	JWT JWTConfig

	// Per-token limit on export endpoints
	ExportRateLimit float64
	ExportBurst     int

	// Export archive: both empty disables the archive worker
	DatabaseURL      string
	S3               S3Config
	ArchiveQueueSize int
	ArchiveListLimit int
}

// JWTConfig holds bearer token validation settings. An empty Secret disables validation.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Enabled reports whether tokens are verified locally
func (c JWTConfig) Enabled() bool {
	return c.Secret != ""
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// Enabled reports whether an archive bucket is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// ArchiveEnabled reports whether exports are archived after download
func (c *Config) ArchiveEnabled() bool {
	return c.S3.Enabled()
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return fromEnv()
}

func fromEnv() (*Config, error) {
	timeout, err := getDuration("UPSTREAM_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getFloat("EXPORT_RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("EXPORT_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}
	queueSize, err := getInt("ARCHIVE_QUEUE_SIZE", 32)
	if err != nil {
		return nil, err
	}
	listLimit, err := getInt("ARCHIVE_LIST_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(getEnv("REPORT_TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}

	cfg := &Config{
		UpstreamURL:     strings.TrimRight(getEnv("UPSTREAM_API_URL", "http://localhost:5001/api"), "/"),
		UpstreamTimeout: timeout,
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:             getEnv("ENV", "development"),
		Timezone:        loc,
		LogoPath:        getEnv("REPORT_LOGO_PATH", ""),
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", ""),
			Audience: getEnv("JWT_AUDIENCE", ""),
		},
		ExportRateLimit:  rateLimit,
		ExportBurst:      burst,
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		ArchiveQueueSize: queueSize,
		ArchiveListLimit: listLimit,
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("ARCHIVE_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("UPSTREAM_API_URL must be an absolute URL")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.ExportRateLimit <= 0 || c.ExportBurst <= 0 {
		return fmt.Errorf("EXPORT_RATE_LIMIT and EXPORT_RATE_BURST must be positive")
	}
	if c.JWT.Enabled() && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.JWT.Enabled() && (c.JWT.Issuer == "" || c.JWT.Audience == "") {
		return fmt.Errorf("JWT_ISSUER and JWT_AUDIENCE are required when JWT_SECRET is set")
	}
	if c.S3.Enabled() && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when ARCHIVE_S3_BUCKET is set")
	}
	if c.ArchiveQueueSize <= 0 {
		return fmt.Errorf("ARCHIVE_QUEUE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
