package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the notes service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string

	AccessTokenSecret  string
	RefreshTokenSecret string

	BcryptCost int

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	LockoutDuration time.Duration
	FailedThreshold int

	SecureCookies bool

	AvatarBucket   string
	AvatarMaxBytes int64

	KafkaBrokers []string

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL  string   `yaml:"postgres_url"`
		RedisURL     string   `yaml:"redis_url"`
		AvatarBucket string   `yaml:"avatar_bucket"`
		KafkaBrokers []string `yaml:"kafka_brokers"`
	} `yaml:"dependencies"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "notes-service",
		HTTPPort:           8080,
		BcryptCost:         12,
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    30 * time.Minute,
		LockoutDuration:    15 * time.Minute,
		FailedThreshold:    5,
		SecureCookies:      true,
		AvatarMaxBytes:     5 << 20,
		MaxDBConns:         20,
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
		OutboxMaxRetries:   10,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Dependencies.AvatarBucket != "" {
			cfg.AvatarBucket = f.Dependencies.AvatarBucket
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = f.Dependencies.KafkaBrokers
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.AccessTokenSecret = envOrDefault("ACCESS_TOKEN_SECRET", cfg.AccessTokenSecret)
	cfg.RefreshTokenSecret = envOrDefault("REFRESH_TOKEN_SECRET", cfg.RefreshTokenSecret)
	cfg.AvatarBucket = envOrDefault("AVATAR_BUCKET", cfg.AvatarBucket)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.FailedThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedThreshold)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.SecureCookies = envBool("SECURE_COOKIES", cfg.SecureCookies)
	cfg.AvatarMaxBytes = int64(envInt("AVATAR_MAX_BYTES", int(cfg.AvatarMaxBytes)))

	cfg.AccessTokenTTL = time.Duration(envInt("ACCESS_TOKEN_TTL_MINUTES", int(cfg.AccessTokenTTL.Minutes()))) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(envInt("REFRESH_TOKEN_TTL_MINUTES", int(cfg.RefreshTokenTTL.Minutes()))) * time.Minute
	cfg.LockoutDuration = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return Config{}, fmt.Errorf("missing ACCESS_TOKEN_SECRET or REFRESH_TOKEN_SECRET")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
