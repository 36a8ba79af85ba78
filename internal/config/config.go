// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Translation provider names accepted by TRANSLATION_PROVIDER.
const (
	TranslationProviderNone   = "none"
	TranslationProviderGemini = "gemini"
)

// Event backends accepted by EVENTS_BACKEND.
const (
	EventsBackendRedis = "redis"
	EventsBackendNATS  = "nats"
	EventsBackendNone  = "none"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBPath     string `mapstructure:"DB_PATH"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	TranslationProvider string        `mapstructure:"TRANSLATION_PROVIDER"`
	TranslationTimeout  time.Duration `mapstructure:"TRANSLATION_TIMEOUT"`
	GeminiAPIKey        string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string        `mapstructure:"GEMINI_MODEL"`

	EventsBackend string `mapstructure:"EVENTS_BACKEND"`
	NATSURL       string `mapstructure:"NATS_URL"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The base file is optional; environment variables and defaults cover everything.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env != "" && env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults(v)

	// Unmarshal only sees keys viper knows about; bind every env key explicitly.
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

var configKeys = []string{
	"PORT", "APP_ENV", "JWT_SECRET", "ALLOWED_ORIGINS",
	"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"REDIS_URL",
	"TRANSLATION_PROVIDER", "TRANSLATION_TIMEOUT", "GEMINI_API_KEY", "GEMINI_MODEL",
	"EVENTS_BACKEND", "NATS_URL",
	"TRACING_ENABLED", "TRACING_EXPORTER", "OTLP_ENDPOINT", "TRACING_SAMPLE_RATIO",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8375")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "market.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "tradepost")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("TRANSLATION_PROVIDER", TranslationProviderNone)
	v.SetDefault("TRANSLATION_TIMEOUT", "5s")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash-001")
	v.SetDefault("EVENTS_BACKEND", EventsBackendRedis)
	v.SetDefault("NATS_URL", "nats://127.0.0.1:4222")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.TranslationProvider = strings.ToLower(strings.TrimSpace(c.TranslationProvider))
	c.EventsBackend = strings.ToLower(strings.TrimSpace(c.EventsBackend))
}

// IsProduction reports whether the config targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DBHost == "" || c.DBName == "" {
			return errors.New("DB_HOST and DB_NAME are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.TranslationProvider {
	case TranslationProviderNone:
	case TranslationProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required when TRANSLATION_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unsupported TRANSLATION_PROVIDER %q", c.TranslationProvider)
	}
	if c.TranslationTimeout < 0 {
		return errors.New("TRANSLATION_TIMEOUT must not be negative")
	}

	switch c.EventsBackend {
	case EventsBackendRedis, EventsBackendNone:
	case EventsBackendNATS:
		if c.NATSURL == "" {
			return errors.New("NATS_URL is required when EVENTS_BACKEND=nats")
		}
	default:
		return fmt.Errorf("unsupported EVENTS_BACKEND %q", c.EventsBackend)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
