package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the engine and CLI need. Values come from the
// environment (optionally seeded from a .env file next to the binary).
type Config struct {
	DBPath   string
	BlobDir  string
	LogLevel string

	// AutoApprove resolves submissions without admin review: overdue tasks
	// fail, everything else completes immediately.
	AutoApprove bool

	// GrowMaxXP selects the leveling variant: when true, maxXP grows by the
	// profile's levelGrowRate percent on every level-up; when false it is
	// held constant.
	GrowMaxXP bool

	// Locales that must be present on localized task fields.
	Locales []string

	// Timezone is the fixed reference zone for calendar-day comparisons.
	Timezone *time.Location

	WebhookURL string
	CacheTTL   time.Duration
}

func Load() (*Config, error) {
	// Missing .env is fine; the environment alone is a valid source.
	_ = godotenv.Load()

	tzName := getEnv("MJ_TIMEZONE", "Asia/Ho_Chi_Minh")
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, err
	}

	return &Config{
		DBPath:      getEnv("MJ_DB", ""),
		BlobDir:     getEnv("MJ_BLOB_DIR", ""),
		LogLevel:    getEnv("MJ_LOG_LEVEL", "info"),
		AutoApprove: getEnvAsBool("MJ_AUTO_APPROVE", false),
		GrowMaxXP:   getEnvAsBool("MJ_GROW_MAX_XP", false),
		Locales:     getEnvAsList("MJ_LOCALES", []string{"en", "vi"}),
		Timezone:    tz,
		WebhookURL:  getEnv("MJ_WEBHOOK_URL", ""),
		CacheTTL:    getEnvAsDuration("MJ_CACHE_TTL", 60*time.Second),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
