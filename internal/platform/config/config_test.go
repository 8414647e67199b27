package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("GENMODEL_BASE_URL", "http://genmodel.local")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "surebet-session", cfg.Session.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.NotEmpty(t, cfg.Session.SigningKey)
	assert.Equal(t, 30*time.Minute, cfg.Verification.DraftTTL)
	assert.Equal(t, 18, cfg.Verification.MinimumAge)
	assert.True(t, cfg.GenModel.OCREnabled)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Equal(t, 10, cfg.RateLimit.SubmitLimit)
	assert.Equal(t, time.Hour, cfg.RateLimit.SubmitWindow)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("GENMODEL_BASE_URL", "http://genmodel.local")
	t.Setenv("SUREBET_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("KYC_MINIMUM_AGE", "21")
	t.Setenv("KYC_OCR_ENABLED", "false")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 21, cfg.Verification.MinimumAge)
	assert.False(t, cfg.GenModel.OCREnabled)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestFromEnvProductionRequirements(t *testing.T) {
	t.Setenv("GENMODEL_BASE_URL", "http://genmodel.local")
	t.Setenv("SUREBET_ENV", "production")
	t.Setenv("SESSION_SIGNING_KEY", "")

	_, err := FromEnv()
	require.Error(t, err, "signing key is mandatory in production")

	t.Setenv("SESSION_SIGNING_KEY", "prod-key")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("GENMODEL_BASE_URL", "")
	_, err := FromEnv()
	require.Error(t, err, "gateway url is required")

	t.Setenv("GENMODEL_BASE_URL", "http://genmodel.local")
	t.Setenv("KYC_MINIMUM_AGE", "16")
	_, err = FromEnv()
	require.Error(t, err)

	t.Setenv("KYC_MINIMUM_AGE", "18")
	t.Setenv("RATE_LIMIT_KYC_SUBMITS", "0")
	_, err = FromEnv()
	require.Error(t, err, "zero submit limit is rejected unless disabled")

	t.Setenv("RATE_LIMIT_DISABLED", "true")
	_, err = FromEnv()
	require.NoError(t, err)
}
