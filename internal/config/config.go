package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env               string
	HTTPPort          string
	APIBaseURL        string
	MediaOrigin       string
	JWTIssuer         string
	JWTSigningKey     string
	RedisAddr         string
	StoreBackend      string
	PollInterval      time.Duration
	DraftTTL          time.Duration
	UploadConcurrency int
	RateLimitPerMin   int
	CORSOrigins       []string
}

// Load returns application config populated from environment variables
// with sensible defaults. A local .env file is honored when present.
func Load() App {
	_ = godotenv.Load()

	return App{
		Env:               getEnv("APP_ENV", "dev"),
		HTTPPort:          getEnv("HTTP_PORT", "8082"),
		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:5000/api"),
		MediaOrigin:       getEnv("MEDIA_ORIGIN", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", "sponsor-backend"),
		JWTSigningKey:     getEnv("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		StoreBackend:      getEnv("STORE_BACKEND", "memory"),
		PollInterval:      durationEnv("NOTIFICATION_POLL_INTERVAL", 60*time.Second),
		DraftTTL:          durationEnv("DRAFT_TTL", 30*time.Minute),
		UploadConcurrency: intEnv("UPLOAD_CONCURRENCY", 3),
		RateLimitPerMin:   intEnv("RATE_LIMIT_PER_MIN", 120),
		CORSOrigins:       listEnv("CORS_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
