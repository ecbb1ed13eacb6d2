// Package cache хранит в Redis идентификаторы обработанных событий платёжного провайдера.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/taskshare/internal/config"
)

const eventKeyPrefix = "webhook:event:"

// Cache — обёртка над клиентом Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// IsProcessed сообщает, обрабатывалось ли уже событие eventID.
func (c *Cache) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	const op = "cache.IsProcessed"
	_, err := c.Db.Get(ctx, eventKeyPrefix+eventID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// MarkProcessed запоминает событие eventID на время ttl.
func (c *Cache) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	const op = "cache.MarkProcessed"
	if err := c.Db.Set(ctx, eventKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}
