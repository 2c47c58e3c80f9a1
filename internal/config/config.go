// apps/go-server/internal/config/config.go
//
// Process configuration, read from the environment after .env is loaded.
// Every key has a working default so the server starts with an empty env;
// the LLM key and JWT secret are the only values a real deployment must set.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port     string
	LogLevel string

	// DBPath is the SQLite file for runs and daily puzzles. Empty keeps
	// everything in memory.
	DBPath string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
	LLMTimeout time.Duration

	MaxRetries       int
	// StrictValidation turns on the stricter Build quality rules.
	StrictValidation bool

	DailySalt         string
	JWTSecret         string
	JWTExpiresDays    int
	AdminPasswordHash string
	ClientOrigin      string
	CookieName        string
	Production        bool
}

// Load reads .env (if present) and then the environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		Port:              getEnv("PORT", "5175"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBPath:            getEnv("DB_PATH", ""),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:        getDuration("LLM_TIMEOUT", 60*time.Second),
		MaxRetries:        getInt("PIPELINE_MAX_RETRIES", 0),
		StrictValidation:  getBool("STRICT_VALIDATION", false),
		DailySalt:         getEnv("DAILY_SALT", "puzzlenet-daily"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret"),
		JWTExpiresDays:    getInt("JWT_EXPIRES_DAYS", 14),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		ClientOrigin:      getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		CookieName:        getEnv("COOKIE_NAME", "puzzlenet_token"),
		Production:        getEnv("APP_ENV", "development") == "production",
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		return def
	}
	return n
}

func getBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean, using default")
		return def
	}
	return b
}

func getDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a duration, using default")
		return def
	}
	return d
}
