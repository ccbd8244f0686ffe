package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("GO_ENV", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RECORDING_MAX_DURATION", "")
	t.Setenv("COMMENT_PAGE_SIZE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("DEFAULT_LANGUAGE", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 3*time.Minute, cfg.Recording.MaxDuration)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, 200, cfg.CommentPageSize)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://ticketdesk:x@db/ticketdesk")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("RECORDING_MAX_DURATION", "90s")
	t.Setenv("COMMENT_PAGE_SIZE", "50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("DEFAULT_LANGUAGE", "es")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 90*time.Second, cfg.Recording.MaxDuration)
	assert.Equal(t, 50, cfg.CommentPageSize)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "es", cfg.DefaultLanguage)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_TTL")

	t.Setenv("SESSION_TTL", "")
	t.Setenv("RECORDING_MAX_DURATION", "-1m")
	_, err = Load()
	assert.ErrorContains(t, err, "RECORDING_MAX_DURATION")

	t.Setenv("RECORDING_MAX_DURATION", "")
	t.Setenv("COMMENT_PAGE_SIZE", "many")
	_, err = Load()
	assert.ErrorContains(t, err, "COMMENT_PAGE_SIZE")
}

func TestProductionRequiresDatabaseURL(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("RECORDING_MAX_DURATION", "")
	t.Setenv("COMMENT_PAGE_SIZE", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}
