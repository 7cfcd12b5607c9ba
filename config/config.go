package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendMemory    = "memory"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort int
	LogLevel   slog.Level

	StorageBackend      string
	DatabaseURL         string
	FirebaseProjectID   string
	FirebaseCredentials string

	JWTSecretKey   string
	SessionTTL     time.Duration
	CookieSecure   bool
	AdminUserIDs   []string
	LoginRateRPS   float64
	LoginBurst     int
	CORSOrigins    []string
	RedisURL       string
	StandingsTTL   time.Duration
	RequestTimeout time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	CatalogObjectKey   string
	CatalogRefreshCron string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend:      strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		JWTSecretKey:        os.Getenv("JWT_SECRET_KEY"),
		AdminUserIDs:        splitList(os.Getenv("ADMIN_USER_IDS")),
		CORSOrigins:         splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RedisURL:            os.Getenv("REDIS_URL"),
		R2AccountID:         os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:       os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:   os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:        os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:     os.Getenv("R2_PUBLIC_BASE_URL"),
		CatalogObjectKey:    os.Getenv("CATALOG_OBJECT_KEY"),
		CatalogRefreshCron:  os.Getenv("CATALOG_REFRESH_CRON"),
	}

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	switch cfg.StorageBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case BackendFirestore:
		if cfg.FirebaseProjectID == "" {
			return nil, fmt.Errorf("FIREBASE_PROJECT_ID environment variable is not set")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want firestore, postgres or memory)", cfg.StorageBackend)
	}

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// cookie сессии живёт около полугода
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "4380h")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.StandingsTTL, err = time.ParseDuration(getEnv("STANDINGS_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid STANDINGS_CACHE_TTL: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}
	if cfg.LoginRateRPS, err = strconv.ParseFloat(getEnv("LOGIN_RATE_RPS", "0.2"), 64); err != nil || cfg.LoginRateRPS <= 0 {
		return nil, fmt.Errorf("invalid LOGIN_RATE_RPS %q", os.Getenv("LOGIN_RATE_RPS"))
	}
	if cfg.LoginBurst, err = strconv.Atoi(getEnv("LOGIN_RATE_BURST", "5")); err != nil || cfg.LoginBurst <= 0 {
		return nil, fmt.Errorf("invalid LOGIN_RATE_BURST %q", os.Getenv("LOGIN_RATE_BURST"))
	}

	return cfg, nil
}

// R2Enabled reports whether all bucket credentials are present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
