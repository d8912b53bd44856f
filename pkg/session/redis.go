package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dss:session:"

// RedisStore shares sessions between service replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: redisKeyPrefix, ttl: ttl}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (State, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DefaultState(), nil
	}
	if err != nil {
		return DefaultState(), fmt.Errorf("session get: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return DefaultState(), fmt.Errorf("session decode: %w", err)
	}
	if _, err := ParsePage(string(state.Page)); err != nil {
		return DefaultState(), nil
	}
	return state, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}
