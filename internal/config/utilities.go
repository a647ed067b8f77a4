package config

import (
	"os"
	"strconv"
	"time"

	"github.com/umlforge/umlforge/pkg/logger"
)

// GetEnvOrDefault returns the value of an environment variable or a default value
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseEnvInt(key string, defaultValue int) int {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		logger.Warn(logger.CONFIG, "Invalid value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return parsed
}

// parseEnvDuration accepts Go duration strings ("750ms", "5s") and falls back
// to a bare integer read as milliseconds.
func parseEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := GetEnvOrDefault(key, "")
	if val == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(val); err == nil {
		return d
	}

	if ms := parseEnvInt(key, -1); ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}

	logger.Warn(logger.CONFIG, "Invalid duration for %s, using default: %s", key, defaultValue)
	return defaultValue
}
