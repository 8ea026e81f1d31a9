package loader

import "github.com/redis/rueidis"

// NewRedisSourceForTest creates a RedisSource with the provided rueidis
// client (test-only).
func NewRedisSourceForTest(c rueidis.Client, key string) *RedisSource {
	return &RedisSource{client: c, key: key}
}
