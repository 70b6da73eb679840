package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx := context.Background()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{Client: client}, nil
}

// Unread counters live in one hash per conversation, field per user.
// HINCRBY gives the server-side atomic increment the delivery pipeline
// relies on, and returns the post-increment value.

func unreadKey(conversationID string) string {
	return "unread:" + conversationID
}

func (c *RedisCache) IncrementUnread(ctx context.Context, conversationID, userID string, delta int64) (int64, error) {
	return c.Client.HIncrBy(ctx, unreadKey(conversationID), userID, delta).Result()
}

func (c *RedisCache) SetUnread(ctx context.Context, conversationID, userID string, value int64) error {
	return c.Client.HSet(ctx, unreadKey(conversationID), userID, value).Err()
}

func (c *RedisCache) UnreadFor(ctx context.Context, conversationID, userID string) (int64, error) {
	raw, err := c.Client.HGet(ctx, unreadKey(conversationID), userID).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}
