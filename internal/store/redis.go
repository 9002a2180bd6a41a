package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores every document under "<namespace>:<key>"
type RedisBackend struct {
	client    *redis.Client
	namespace string
}

func NewRedisBackend(client *redis.Client, namespace string) *RedisBackend {
	return &RedisBackend{client: client, namespace: namespace}
}

func (backend *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	document, err := backend.client.Get(ctx, backend.namespace+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("getting document %v: %w", key, err)
	}
	return document, nil
}

func (backend *RedisBackend) Put(ctx context.Context, key string, document []byte) error {
	if err := backend.client.Set(ctx, backend.namespace+":"+key, document, 0).Err(); err != nil {
		return fmt.Errorf("setting document %v: %w", key, err)
	}
	return nil
}
