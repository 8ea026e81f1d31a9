package loader

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
)

// RedisConfig holds connection parameters for the optional Redis-backed
// artifact source.
type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
	Key      string
}

// RedisSource fetches the artifact blob stored under a single key. It is
// not a vector store: the index itself always lives in process memory;
// this is just an alternative place to park the cold-path blob so a
// reload does not require local disk access.
type RedisSource struct {
	client rueidis.Client
	key    string
}

// NewRedisSource creates a RedisSource via rueidis.
func NewRedisSource(cfg RedisConfig) (*RedisSource, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("key is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &RedisSource{client: client, key: cfg.Key}, nil
}

// Fetch reads the artifact blob from the configured key.
func (s *RedisSource) Fetch(ctx context.Context) ([]byte, error) {
	cmd := s.client.B().Get().Key(s.key).Build()
	bytes, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		return nil, fmt.Errorf("get artifact key %s: %w", s.key, err)
	}
	return bytes, nil
}

// Close shuts down the underlying client.
func (s *RedisSource) Close() {
	s.client.Close()
}
