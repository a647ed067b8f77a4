package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/umlforge/umlforge/internal/config"
	"github.com/umlforge/umlforge/internal/infrastructure/openai"
	"github.com/umlforge/umlforge/internal/infrastructure/plantuml"
	"github.com/umlforge/umlforge/internal/infrastructure/redis"
	"github.com/umlforge/umlforge/internal/services/assistant"
	"github.com/umlforge/umlforge/internal/services/diagram"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

// Config gathers everything InitializeServices needs.
type Config struct {
	OpenAIKey           string
	OpenAIBaseURL       string
	GeneratorAssistant  string
	ExaminerAssistant   string
	AssistantPollPeriod time.Duration

	PlantUMLServerURL string
	PlantUMLTimeout   time.Duration

	RedisURL      string
	RedisPassword string
	RedisDB       int
	DiagramDBPath string
}

// ConfigFromEnv reads Config from the environment.
func ConfigFromEnv() Config {
	return Config{
		OpenAIKey:           config.GetOpenAIKey(),
		OpenAIBaseURL:       config.GetOpenAIBaseURL(),
		GeneratorAssistant:  config.GetCodeGeneratorAssistantID(),
		ExaminerAssistant:   config.GetCodeExaminerAssistantID(),
		AssistantPollPeriod: config.GetAssistantPollInterval(),
		PlantUMLServerURL:   config.GetPlantUMLServerURL(),
		PlantUMLTimeout:     config.GetPlantUMLTimeout(),
		RedisURL:            config.GetRedisURL(),
		RedisPassword:       config.GetRedisPassword(),
		RedisDB:             config.GetRedisDB(),
		DiagramDBPath:       config.GetDiagramDBPath(),
	}
}

type Services struct {
	assistantGateway *assistant.Gateway
	generatorID      string
	examinerID       string
	plantUMLService  *plantuml.Service
	diagramStore     diagram.Store
	diagramService   *diagram.Service
}

// InitializeServices initializes all required services
func InitializeServices(cfg Config) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	openAIService := openai.NewService(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	gateway := assistant.NewGateway(openAIService.GetClient(), assistant.WithPollInterval(cfg.AssistantPollPeriod))
	log.Info().Dur("poll_interval", cfg.AssistantPollPeriod).Msg("Initializing assistant gateway")

	plantUMLService := plantuml.NewService(cfg.PlantUMLServerURL, cfg.PlantUMLTimeout)
	log.Info().Str("server", cfg.PlantUMLServerURL).Dur("timeout", cfg.PlantUMLTimeout).Msg("Initializing PlantUML service")

	store, err := newDiagramStore(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize diagram store")
		return nil, fmt.Errorf("failed to initialize diagram store: %w", err)
	}

	log.Info().Msg("All services initialized successfully")

	return &Services{
		assistantGateway: gateway,
		generatorID:      cfg.GeneratorAssistant,
		examinerID:       cfg.ExaminerAssistant,
		plantUMLService:  plantUMLService,
		diagramStore:     store,
		diagramService:   diagram.NewService(store),
	}, nil
}

// newDiagramStore prefers Redis, then SQLite, then memory.
func newDiagramStore(cfg Config) (diagram.Store, error) {
	if cfg.RedisURL != "" {
		if redisService := redis.NewService(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); redisService != nil {
			log.Info().Str("backend", "redis").Msg("Initializing diagram store")
			return diagram.NewRedisStore(redisService), nil
		}
		log.Warn().Msg("Redis unavailable - falling back")
	}

	if cfg.DiagramDBPath != "" {
		log.Info().Str("backend", "sqlite").Str("path", cfg.DiagramDBPath).Msg("Initializing diagram store")
		return diagram.NewSQLiteStore(cfg.DiagramDBPath)
	}

	log.Warn().Str("backend", "memory").Msg("Initializing diagram store - diagrams will not survive a restart")
	return diagram.NewMemoryStore(), nil
}

// GetAssistantGateway returns the assistant gateway
func (s *Services) GetAssistantGateway() *assistant.Gateway {
	return s.assistantGateway
}

// GetGeneratorAssistantID returns the id of the code generator assistant
func (s *Services) GetGeneratorAssistantID() string {
	return s.generatorID
}

// GetExaminerAssistantID returns the id of the code examiner assistant
func (s *Services) GetExaminerAssistantID() string {
	return s.examinerID
}

// GetPlantUMLService returns the render client
func (s *Services) GetPlantUMLService() *plantuml.Service {
	return s.plantUMLService
}

// GetDiagramService returns the diagram library service
func (s *Services) GetDiagramService() *diagram.Service {
	return s.diagramService
}

// Close releases the diagram store
func (s *Services) Close() error {
	return s.diagramStore.Close()
}
