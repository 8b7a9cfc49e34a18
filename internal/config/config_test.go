package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.GRPCPort)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 7*24*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, 20, cfg.AI.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.AI.RateLimitWindow)
	assert.Empty(t, cfg.AI.APIKey)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "3000")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("AI_RATE_LIMIT_WINDOW", "not-a-duration")
	t.Setenv("GOOGLE_AI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, time.Minute, cfg.AI.RateLimitWindow)
	assert.Equal(t, "key", cfg.AI.APIKey)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port: "8080", GRPCPort: "9090", DBPath: "x.db", JWTSecret: "s",
			AuthTokenTTL: time.Hour, MaxBodyBytes: 1,
			AI:              AIConfig{TextModel: "m", VisionModel: "m", RateLimitRequests: 1, RateLimitWindow: time.Second},
			ConversationLog: ConversationLogConfig{Dir: "d", GlobalPath: "g", QueueSize: 1},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"same ports", func(c *Config) { c.GRPCPort = c.Port }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"zero ttl", func(c *Config) { c.AuthTokenTTL = 0 }},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }},
		{"no model", func(c *Config) { c.AI.TextModel = "" }},
		{"zero rate", func(c *Config) { c.AI.RateLimitRequests = 0 }},
		{"zero window", func(c *Config) { c.AI.RateLimitWindow = 0 }},
		{"zero queue", func(c *Config) { c.ConversationLog.QueueSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
