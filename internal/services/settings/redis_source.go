package settings

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads settings from a single Redis hash.
type RedisSource struct {
	client redis.Cmdable
	key    string
}

func NewRedisSource(client redis.Cmdable, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

func (r *RedisSource) Load(ctx context.Context) (map[string]string, error) {
	return r.client.HGetAll(ctx, r.key).Result()
}
