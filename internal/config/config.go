package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/mresitgokce1/inventory-multi-brand-api/pkg/config"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the inventory API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"inventory"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"inventory_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"inventory"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// JWT
	JWTSecret        string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTAccessExpiry  string `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"10m"`
	JWTRefreshExpiry string `env:"JWT_REFRESH_TOKEN_EXPIRY" envDefault:"720h"`

	// Refresh cookie (Secure + SameSite=None outside development)
	CookieDomain string `env:"REFRESH_COOKIE_DOMAIN"`

	// Login rate limiting (active only when Redis is enabled)
	LoginRateLimit  int    `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateWindow string `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`

	// Redis
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Media storage
	MediaRoot    string `env:"MEDIA_ROOT" envDefault:"./media"`
	MediaBaseURL string `env:"MEDIA_BASE_URL" envDefault:"/media"`

	// Image processing
	ImageMaxWidth   int   `env:"IMAGE_MAX_WIDTH" envDefault:"1920"`
	ImageSmallWidth int   `env:"IMAGE_SMALL_WIDTH" envDefault:"400"`
	ImageQuality    int   `env:"IMAGE_QUALITY" envDefault:"80"`
	MaxUploadBytes  int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`

	// QR codes (URL embedded in generated codes)
	QRBaseURL string `env:"QR_BASE_URL" envDefault:"https://app.example.com"`

	// Kafka (event publishing is disabled when no brokers are configured)
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants. In non-development environments
// it additionally requires an explicitly set, strong JWT secret.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if _, err := time.ParseDuration(c.JWTAccessExpiry); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY %q: %w", c.JWTAccessExpiry, err)
	}
	if _, err := time.ParseDuration(c.JWTRefreshExpiry); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_TOKEN_EXPIRY %q: %w", c.JWTRefreshExpiry, err)
	}
	if _, err := time.ParseDuration(c.LoginRateWindow); err != nil {
		return fmt.Errorf("invalid LOGIN_RATE_WINDOW %q: %w", c.LoginRateWindow, err)
	}
	if c.ImageQuality < 1 || c.ImageQuality > 100 {
		return fmt.Errorf("IMAGE_QUALITY must be between 1 and 100, got %d", c.ImageQuality)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0, got %d", c.MaxUploadBytes)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}

	if c.Environment != "development" {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
		}
	}

	return nil
}

// IsDevelopment reports whether the API runs in development mode. The refresh
// cookie is Secure with SameSite=None everywhere else.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
