package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "development")
	t.Setenv("JWT_TTL", "")
	t.Setenv("LLM_MIN_DELAY", "")
	t.Setenv("DB_MAX_POOL_SIZE", "")

	cfg := Load()

	assert.Equal(t, 10*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Llm.MinDelay)
	assert.Equal(t, 20*time.Second, cfg.Llm.MaxDelay)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 300, cfg.App.RateLimitMax)
	assert.Equal(t, "logs/websocket.log", cfg.App.WsLogFilePath)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("DB_MAX_POOL_SIZE", "50")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("DB_AUTO_MIGRATE", "")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Tracing.Enabled)
	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Database.AutoMigrate)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_TTL", "ten hours")
	t.Setenv("RATE_LIMIT_MAX", "lots")

	cfg := Load()

	assert.Equal(t, 10*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 300, cfg.App.RateLimitMax)
}

func TestCorsWildcardIsRejected(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"*", "http://localhost:3000"},
		{" * , https://app.example.com", "https://app.example.com"},
		{"https://a.example.com, https://b.example.com", "https://a.example.com,https://b.example.com"},
		{"", "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("CORS_ALLOWED_ORIGINS", tt.raw)
			assert.Equal(t, tt.want, Load().App.CorsAllowedOrigins)
		})
	}
}
