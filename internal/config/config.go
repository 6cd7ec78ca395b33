package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries every tunable the server needs. It is loaded once in main
// and handed to the components that use it; nothing else reads the
// environment directly.
type Config struct {
	Env  string
	Port int

	// DatabaseURL is either a postgres:// URL or a path to a sqlite file.
	DatabaseURL string

	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string

	// BasicAuthUser empty means the auth gate is disabled.
	BasicAuthUser     string
	BasicAuthPassword string
	SessionSecret     []byte

	// RedisAddr empty means the in-memory cache is used.
	RedisAddr     string
	RedisPassword string
}

const defaultMaxUploadBytes = 5 * 1024 * 1024 // 5MB, matches the form limit

// Load reads configuration from the environment and fills in development
// defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Env:               envOr("APP_ENV", "development"),
		DatabaseURL:       envOr("DATABASE_URL", "platewatch.db"),
		UploadDir:         envOr("UPLOAD_DIR", "instance/uploads"),
		MaxUploadBytes:    defaultMaxUploadBytes,
		AllowedExtensions: []string{"png", "jpg", "jpeg", "gif", "webp"},
		BasicAuthUser:     os.Getenv("BASIC_AUTH_USERNAME"),
		BasicAuthPassword: os.Getenv("BASIC_AUTH_PASSWORD"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
	}

	// Heroku-style URLs come in as postgres://, normalize once here.
	if strings.HasPrefix(cfg.DatabaseURL, "postgres://") {
		cfg.DatabaseURL = "postgresql://" + strings.TrimPrefix(cfg.DatabaseURL, "postgres://")
	}

	port := envOr("PORT", "8080")
	p, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
	}
	cfg.Port = p

	if maxUpload := os.Getenv("MAX_UPLOAD_BYTES"); maxUpload != "" {
		n, err := strconv.ParseInt(maxUpload, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q: %w", maxUpload, err)
		}
		cfg.MaxUploadBytes = n
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		// Sessions won't survive a restart without a configured key.
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.SessionSecret = buf
	} else {
		cfg.SessionSecret = []byte(secret)
	}

	return cfg, nil
}

// IsPostgres reports whether DatabaseURL points at a postgres server rather
// than a local sqlite file.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// AuthEnabled reports whether the basic-auth gate should be enforced.
// Credentials must be configured and the gate is never forced in development.
func (c *Config) AuthEnabled() bool {
	return c.BasicAuthUser != "" && c.Env != "development"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
