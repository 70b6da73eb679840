package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	JWTSecret        string
	JWTExpireSeconds int64

	// Upper bound on a single persistence call made during message submit.
	PersistTimeout time.Duration

	RateLimitRPS int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             "8080",
		DatabaseURL:      "host=localhost user=postgres password=postgres dbname=linkspace port=5432 sslmode=disable TimeZone=UTC",
		RedisAddr:        "localhost:6379",
		JWTSecret:        "dev-secret-change-me",
		JWTExpireSeconds: 30 * 24 * 3600,
		PersistTimeout:   5 * time.Second,
		RateLimitRPS:     20,
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.DatabaseURL = dsn
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if raw := os.Getenv("JWT_EXPIRE_SECONDS"); raw != "" {
		if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil && seconds > 0 {
			cfg.JWTExpireSeconds = seconds
		}
	}
	if raw := os.Getenv("PERSIST_TIMEOUT_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			cfg.PersistTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		if rps, err := strconv.Atoi(raw); err == nil && rps > 0 {
			cfg.RateLimitRPS = rps
		}
	}

	return cfg, nil
}
