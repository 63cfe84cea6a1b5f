package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	DBPath     string
	JWTSecret  string
	TokenTTL   time.Duration
	UploadDir  string
	BcryptCost int
	Version    string
}

func Load() Config {
	addr := envString("FEEDWIRE_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	return Config{
		Addr:       addr,
		DBPath:     envString("FEEDWIRE_DB", "feedwire.db"),
		JWTSecret:  envString("FEEDWIRE_JWT_SECRET", "dev-jwt-secret"),
		TokenTTL:   envDuration("FEEDWIRE_TOKEN_TTL", time.Hour),
		UploadDir:  envString("FEEDWIRE_UPLOAD_DIR", "images"),
		BcryptCost: envInt("FEEDWIRE_BCRYPT_COST", 12),
		Version:    envString("FEEDWIRE_VERSION", "dev"),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
