package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Service struct {
	client *redis.Client
}

// NewService connects to url and returns nil when it is unset or unreachable.
func NewService(url, password string, db int) *Service {
	if url == "" {
		log.Warn().Msg("Redis URL not configured - service will be unavailable")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", url).
			Msg("Failed to establish Redis connection")
		_ = client.Close()
		return nil
	}

	return NewServiceWithClient(client)
}

// NewServiceWithClient wraps an existing client.
func NewServiceWithClient(client *redis.Client) *Service {
	return &Service{client: client}
}

// Watch runs fn inside an optimistic transaction watching keys.
func (s *Service) Watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	return s.client.Watch(ctx, fn, keys...)
}

// Ping checks if Redis is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
