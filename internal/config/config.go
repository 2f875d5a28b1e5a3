package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is the insecure fallback signing key. Startup refuses it
// when ENV=prod.
const DefaultJWTSecret = "your-secret-key"

type Config struct {
	Port string

	// Store selects the backing store: "mongo" (default) or "memory".
	Store    string
	MongoURI string
	MongoDB  string
	// StoreTimeout bounds every store call (default 5s).
	StoreTimeout time.Duration

	JWTSecret string
	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// HealthInterval is how often the store health monitor pings the store.
	HealthInterval time.Duration

	// CORSAllowedOrigins is a list of origins allowed for CORS, set via
	// CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are
	// sent (same-origin only).
	CORSAllowedOrigins []string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		Store:        getEnv("STORE", "mongo"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://mongo:27017"),
		MongoDB:      getEnv("MONGO_DB", "user_management"),
		StoreTimeout: time.Duration(getEnvInt("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,

		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),

		Env:       getEnv("ENV", "dev"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		HealthInterval: time.Duration(getEnvInt("HEALTH_INTERVAL_SECONDS", 30)) * time.Second,

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
	}
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
