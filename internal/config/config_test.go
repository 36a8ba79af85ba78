package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8375", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "market.db", cfg.DBPath)
	assert.Equal(t, TranslationProviderNone, cfg.TranslationProvider)
	assert.Equal(t, 5*time.Second, cfg.TranslationTimeout)
	assert.Equal(t, EventsBackendRedis, cfg.EventsBackend)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("TRANSLATION_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("TRANSLATION_TIMEOUT", "750ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, TranslationProviderGemini, cfg.TranslationProvider)
	assert.Equal(t, 750*time.Millisecond, cfg.TranslationTimeout)
}

func validConfig() *Config {
	return &Config{
		Port:                "8375",
		Env:                 "development",
		JWTSecret:           "a-very-long-secret-used-only-for-tests",
		DBDriver:            "sqlite",
		DBPath:              "market.db",
		TranslationProvider: TranslationProviderNone,
		EventsBackend:       EventsBackendRedis,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Port = "" }, wantErr: "PORT is required"},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "unsupported DB_DRIVER"},
		{name: "sqlite without path", mutate: func(c *Config) { c.DBPath = "" }, wantErr: "DB_PATH"},
		{name: "gemini without key", mutate: func(c *Config) { c.TranslationProvider = TranslationProviderGemini }, wantErr: "GEMINI_API_KEY"},
		{name: "unknown provider", mutate: func(c *Config) { c.TranslationProvider = "deepl" }, wantErr: "unsupported TRANSLATION_PROVIDER"},
		{name: "nats without url", mutate: func(c *Config) { c.EventsBackend = EventsBackendNATS }, wantErr: "NATS_URL"},
		{name: "unknown events backend", mutate: func(c *Config) { c.EventsBackend = "kafka" }, wantErr: "unsupported EVENTS_BACKEND"},
		{
			name: "production default secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = defaultJWTSecret
			},
			wantErr: "must be changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
