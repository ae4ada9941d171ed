package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rimjeddah/consulate-api/config"
)

// defaultBroadcast is shown on the news ticker until an administrator
// sets a message of their own.
const defaultBroadcast = "مرحباً بكم في البوابة الإلكترونية الرسمية للقنصلية الموريتانية بجدة. جميع الخدمات الرقمية متاحة الآن للمواطنين."

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// RedisCache holds the short-lived per-date availability projection and
// the broadcast ticker message.
type RedisCache struct {
	client    *redis.Client
	countsTTL time.Duration
}

func NewRedisCache(client *redis.Client, countsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, countsTTL: countsTTL}
}

func (c *RedisCache) GetSlotCounts(ctx context.Context, date string) (map[string]int, error) {
	data, err := c.client.Get(ctx, slotCountsKey(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var counts map[string]int
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *RedisCache) SetSlotCounts(ctx context.Context, date string, counts map[string]int) error {
	payload, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, slotCountsKey(date), payload, c.countsTTL).Err()
}

func (c *RedisCache) InvalidateSlotCounts(ctx context.Context, date string) error {
	return c.client.Del(ctx, slotCountsKey(date)).Err()
}

func (c *RedisCache) GetBroadcast(ctx context.Context) (string, error) {
	msg, err := c.client.Get(ctx, broadcastKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return defaultBroadcast, nil
		}
		return "", err
	}
	return msg, nil
}

func (c *RedisCache) SetBroadcast(ctx context.Context, msg string) error {
	return c.client.Set(ctx, broadcastKey(), msg, 0).Err()
}

func slotCountsKey(date string) string {
	return "cache:slots:" + date
}

func broadcastKey() string {
	return "consulate:news"
}
