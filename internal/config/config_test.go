package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars with automatic cleanup.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.PostgresHost)
	assert.Equal(t, "10m", cfg.JWTAccessExpiry)
	assert.Equal(t, "720h", cfg.JWTRefreshExpiry)
	assert.Equal(t, 5, cfg.LoginRateLimit)
	assert.Equal(t, "./media", cfg.MediaRoot)
	assert.Equal(t, "/media", cfg.MediaBaseURL)
	assert.Equal(t, 1920, cfg.ImageMaxWidth)
	assert.Equal(t, 400, cfg.ImageSmallWidth)
	assert.Equal(t, 80, cfg.ImageQuality)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, "https://app.example.com", cfg.QRBaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.RedisEnabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Development_AcceptsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"JWT_SECRET":  "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "change-this-to-a-secure-secret", cfg.JWTSecret)
}

func TestLoad_Production_RejectsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "short-but-not-default-secret",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be at least 32 characters")
}

func TestLoad_Production_AcceptsStrongSecret(t *testing.T) {
	strongSecret := "this-is-a-very-secure-secret-key-for-production-use-1234"
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  strongSecret,
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, strongSecret, cfg.JWTSecret)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"HTTP_PORT":   "70000",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_RejectsInvalidAccessExpiry(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":             "development",
		"JWT_ACCESS_TOKEN_EXPIRY": "ten-minutes",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JWT_ACCESS_TOKEN_EXPIRY")
}

func TestLoad_RejectsInvalidRateWindow(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":       "development",
		"LOGIN_RATE_WINDOW": "15 minutes",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid LOGIN_RATE_WINDOW")
}

func TestLoad_RejectsOutOfRangeImageQuality(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":   "development",
		"IMAGE_QUALITY": "0",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGE_QUALITY")
}

func TestLoad_ParsesKafkaBrokers(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT":   "development",
		"KAFKA_BROKERS": "kafka-1:9092,kafka-2:9092",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}
