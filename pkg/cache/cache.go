package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kofoworola/geogate/internal/models"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client: client,
		ttl:    ttl,
	}, nil
}

// GetTarget retrieves a cached geofence target. Returns nil on a miss.
func (c *Cache) GetTarget(ctx context.Context, invitationID uuid.UUID) (*models.GeofenceTarget, error) {
	key := fmt.Sprintf("target:%s", invitationID)
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	var target models.GeofenceTarget
	if err := json.Unmarshal(val, &target); err != nil {
		// Stale or corrupt entry, treat as a miss.
		return nil, nil
	}
	return &target, nil
}

// SetTarget caches a geofence target for its invitation.
func (c *Cache) SetTarget(ctx context.Context, target *models.GeofenceTarget) error {
	data, err := json.Marshal(target)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	key := fmt.Sprintf("target:%s", target.InvitationID)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// InvalidateTarget drops a cached target after registration overwrites it.
func (c *Cache) InvalidateTarget(ctx context.Context, invitationID uuid.UUID) error {
	key := fmt.Sprintf("target:%s", invitationID)
	return c.client.Del(ctx, key).Err()
}

// CheckRateLimit implements fixed-window rate limiting.
func (c *Cache) CheckRateLimit(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("rl:%s", identifier)

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check error: %w", err)
	}

	return incr.Val() <= int64(limit), nil
}

// IncrementMetric increments a counter metric.
func (c *Cache) IncrementMetric(ctx context.Context, metric string) error {
	key := fmt.Sprintf("metric:%s", metric)
	return c.client.Incr(ctx, key).Err()
}

// GetMetric retrieves a metric value.
func (c *Cache) GetMetric(ctx context.Context, metric string) (int64, error) {
	key := fmt.Sprintf("metric:%s", metric)
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var count int64
	if _, err := fmt.Sscanf(val, "%d", &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
