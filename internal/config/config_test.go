package config

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PASSWORD_SESSION_TTL", "")
	t.Setenv("OAUTH_ACCESS_TTL", "")

	cfg := Load()

	assert.Equal(t, 7*24*time.Hour, cfg.PasswordSessionTTL)
	assert.Equal(t, time.Hour, cfg.OAuthAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.OAuthRefreshTTL)
	assert.Equal(t, http.SameSiteLaxMode, cfg.CookieSameSite)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("PASSWORD_SESSION_TTL", "1h")
	t.Setenv("COOKIE_SAMESITE", "Strict")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("COOKIE_SECURE", "true")

	cfg := Load()

	assert.Equal(t, time.Hour, cfg.PasswordSessionTTL)
	assert.Equal(t, http.SameSiteStrictMode, cfg.CookieSameSite)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.CookieSecure)
}

func TestValidateRequiresSecret(t *testing.T) {
	cfg := &Config{
		DatabaseURL:        "postgres://x",
		PasswordSessionTTL: time.Hour,
		OAuthAccessTTL:     time.Hour,
		OAuthRefreshTTL:    time.Hour,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")

	cfg.JWTSecret = "short"
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.Validate())
}

func TestGoogleEnabled(t *testing.T) {
	cfg := &Config{GoogleClientID: "id"}
	assert.False(t, cfg.GoogleEnabled())
	cfg.GoogleClientSecret = "secret"
	assert.True(t, cfg.GoogleEnabled())
}
