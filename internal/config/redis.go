package config

import (
	"github.com/umlforge/umlforge/pkg/logger"
)

func GetRedisURL() string {
	logger.Debug(logger.CONFIG, "Attempting to retrieve Redis URL from environment")
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		logger.Debug(logger.CONFIG, "Redis URL not set")
	} else {
		logger.Info(logger.CONFIG, "Redis URL successfully loaded")
	}
	return value
}

func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}

// GetRedisDB returns the logical Redis database index
func GetRedisDB() int {
	return parseEnvInt("REDIS_DB", 0)
}
