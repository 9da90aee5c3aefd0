package i18n

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PreferenceStore persists a language choice per client.
type PreferenceStore interface {
	Language(ctx context.Context, clientID string) (Language, bool, error)
	SetLanguage(ctx context.Context, clientID string, lang Language) error
}

const redisKeyPrefix = "stok:language:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient: bağlantıyı ping ile doğrular
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Language(ctx context.Context, clientID string) (Language, bool, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+clientID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dil tercihi okunamadı: %w", err)
	}
	lang, ok := ParseLanguage(val)
	if !ok {
		return "", false, nil
	}
	return lang, true, nil
}

func (s *RedisStore) SetLanguage(ctx context.Context, clientID string, lang Language) error {
	if err := s.client.Set(ctx, redisKeyPrefix+clientID, string(lang), 0).Err(); err != nil {
		return fmt.Errorf("dil tercihi kaydedilemedi: %w", err)
	}
	return nil
}

// MemoryStore keeps preferences in process memory; used when no Redis is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	langs map[string]Language
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{langs: make(map[string]Language)}
}

func (s *MemoryStore) Language(_ context.Context, clientID string) (Language, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lang, ok := s.langs[clientID]
	return lang, ok, nil
}

func (s *MemoryStore) SetLanguage(_ context.Context, clientID string, lang Language) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.langs[clientID] = lang
	return nil
}
