package config

import (
	"time"

	"github.com/umlforge/umlforge/pkg/logger"
)

// GetOpenAIKey returns the API key used for the assistants API
func GetOpenAIKey() string {
	value := GetEnvOrDefault("OPENAI_API_KEY", "")
	if value == "" {
		logger.Warn(logger.CONFIG, "OPENAI_API_KEY environment variable not set")
	}
	return value
}

// GetOpenAIBaseURL returns an override for the API base URL, empty for the default
func GetOpenAIBaseURL() string {
	return GetEnvOrDefault("OPENAI_BASE_URL", "")
}

func GetCodeGeneratorAssistantID() string {
	value := GetEnvOrDefault("CODE_GENERATOR_ASSISTANT_ID", "")
	if value == "" {
		logger.Warn(logger.CONFIG, "CODE_GENERATOR_ASSISTANT_ID environment variable not set")
	}
	return value
}

func GetCodeExaminerAssistantID() string {
	value := GetEnvOrDefault("CODE_EXAMINER_ASSISTANT_ID", "")
	if value == "" {
		logger.Warn(logger.CONFIG, "CODE_EXAMINER_ASSISTANT_ID environment variable not set")
	}
	return value
}

// GetAssistantPollInterval returns the wait between run status polls
func GetAssistantPollInterval() time.Duration {
	return parseEnvDuration("ASSISTANT_POLL_INTERVAL", 500*time.Millisecond)
}
