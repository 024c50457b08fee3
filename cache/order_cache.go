package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"commerce-service/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// allOrdersKey is the fixed sentinel for the aggregate list entry. It cannot
// collide with a per-order key, which always embeds a UUID.
const allOrdersKey = "orders:all"

func orderKey(id uuid.UUID) string {
	return "order:" + id.String()
}

// OrderCache holds rendered order views. Entries are immutable snapshots:
// mutating a returned value never affects the store. A miss is reported as
// (nil, nil); errors are only returned for transport failures so callers can
// degrade to the store.
type OrderCache interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderResponse, error)
	SetOrder(ctx context.Context, view *models.OrderResponse) error
	EvictOrder(ctx context.Context, id uuid.UUID) error
	GetAllOrders(ctx context.Context) ([]models.OrderResponse, error)
	SetAllOrders(ctx context.Context, views []models.OrderResponse) error
	EvictAllOrders(ctx context.Context) error
}

// RedisOrderCache implements OrderCache on top of Redis with a per-entry TTL.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrderCache creates a new RedisOrderCache.
func NewRedisOrderCache(client *redis.Client, ttl time.Duration) OrderCache {
	return &RedisOrderCache{client: client, ttl: ttl}
}

func (c *RedisOrderCache) GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderResponse, error) {
	data, err := c.client.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var view models.OrderResponse
	if err := json.Unmarshal(data, &view); err != nil {
		// Treat an undecodable entry as a miss; it will be overwritten.
		return nil, nil
	}
	return &view, nil
}

func (c *RedisOrderCache) SetOrder(ctx context.Context, view *models.OrderResponse) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, orderKey(view.ID), data, c.ttl).Err()
}

func (c *RedisOrderCache) EvictOrder(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, orderKey(id)).Err()
}

func (c *RedisOrderCache) GetAllOrders(ctx context.Context) ([]models.OrderResponse, error) {
	data, err := c.client.Get(ctx, allOrdersKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var views []models.OrderResponse
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, nil
	}
	return views, nil
}

func (c *RedisOrderCache) SetAllOrders(ctx context.Context, views []models.OrderResponse) error {
	data, err := json.Marshal(views)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, allOrdersKey, data, c.ttl).Err()
}

func (c *RedisOrderCache) EvictAllOrders(ctx context.Context) error {
	return c.client.Del(ctx, allOrdersKey).Err()
}
