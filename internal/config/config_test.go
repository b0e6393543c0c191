package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Handicapper", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 0.15, cfg.Payment.PlatformFeeRate)
	assert.False(t, cfg.Features.EnforcePickTransitions)
	assert.Equal(t, "handicapper", cfg.Database.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENFORCE_PICK_TRANSITIONS", "true")
	t.Setenv("PLATFORM_FEE_RATE", "0.2")
	t.Setenv("JWT_ACCESS_TOKEN_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Features.EnforcePickTransitions)
	assert.Equal(t, 0.2, cfg.Payment.PlatformFeeRate)
	assert.Equal(t, 90*time.Minute, cfg.Security.JWTAccessTokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("APP_DEBUG", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.False(t, cfg.App.Debug)
}

func TestLoad_RejectsOutOfRangeFee(t *testing.T) {
	t.Setenv("PLATFORM_FEE_RATE", "1.5")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_SubscriptionCatalog(t *testing.T) {
	t.Setenv("SUBSCRIPTION_PRODUCTS", "monthly_vip=29.99, weekly_vip = 9.5,broken,bad=abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"monthly_vip": 29.99, "weekly_vip": 9.5}, cfg.Payment.SubscriptionPrices)
	price, ok := cfg.Payment.SubscriptionPrice("weekly_vip")
	assert.True(t, ok)
	assert.Equal(t, 9.5, price)
	_, ok = cfg.Payment.SubscriptionPrice("monthly_subscription")
	assert.False(t, ok)
}

func TestLoad_RejectsNonPositiveSubscriptionPrice(t *testing.T) {
	t.Setenv("SUBSCRIPTION_PRODUCTS", "monthly_vip=0")

	_, err := Load()
	assert.Error(t, err)
}
