package openai

import (
	"sync"

	"github.com/sashabaranov/go-openai"

	"github.com/umlforge/umlforge/internal/services/assistant"
	"github.com/umlforge/umlforge/pkg/logger"
)

var _ assistant.Client = (*openai.Client)(nil)

type Service struct {
	mu     sync.RWMutex
	client *openai.Client
}

// NewService builds the client even without a key; assistant calls then
// fail with the API's authentication error.
func NewService(key, baseURL string) *Service {
	logger.Info(logger.SERVICE, "Initialising OpenAI service")

	if key == "" {
		logger.Warn(logger.SERVICE, "OpenAI service not configured - OPENAI_API_KEY missing")
	}

	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Service{
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}
