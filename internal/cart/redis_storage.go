package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HassanTech1/4seven/internal/domain"
)

// Abandoned carts expire; a paid checkout deletes the slot explicitly.
const cartTTL = 90 * 24 * time.Hour

type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    cartTTL,
	}
}

func (r *RedisStorage) Load(ctx context.Context, cartID string) (domain.Snapshot, error) {
	data, err := r.client.Get(ctx, storageKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items domain.Snapshot
	if err2 := json.Unmarshal(data, &items); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return items, nil
}

func (r *RedisStorage) Save(ctx context.Context, cartID string, items domain.Snapshot) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, storageKey(cartID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, storageKey(cartID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func storageKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}
