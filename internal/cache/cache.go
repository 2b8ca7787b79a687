// Package cache stores serialized values with a time to live.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/ammario/tlru"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(Provide),
)

type Store interface {
	// Get reports found=false for missing or expired keys.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Params struct {
	fx.In

	Client *redis.Client `optional:"true"`
	Log    *zap.Logger
}

// Provide uses redis when a client is configured and process memory otherwise.
func Provide(p Params) Store {
	log := p.Log.Named("cache")
	if p.Client == nil {
		log.Info("using in-memory cache")
		return NewMemoryStore(memoryStoreSize)
	}
	return NewRedisStore(p.Client)
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

const memoryStoreSize = 1 << 20

// MemoryStore keeps values in process. Cost is the value size in bytes.
type MemoryStore struct {
	cache *tlru.Cache[string, []byte]
}

func NewMemoryStore(maxBytes int) *MemoryStore {
	return &MemoryStore{
		cache: tlru.New[string](func(v []byte) int { return len(v) }, maxBytes),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	value, _, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, append([]byte(nil), value...), ttl)
	return nil
}
