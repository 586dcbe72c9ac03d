package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	followCountsKeyPrefix = "blogsphere:follow_counts:"
	viewedKeyPrefix       = "blogsphere:viewed:"
	followCountsTTL       = 10 * time.Minute
)

// RedisCache implements Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings the server.
func NewRedisCache(address, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func followCountsKey(userID uint) string {
	return followCountsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (c *RedisCache) GetFollowCounts(ctx context.Context, userID uint) (FollowCounts, bool, error) {
	vals, err := c.client.HMGet(ctx, followCountsKey(userID), "followers", "following").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return FollowCounts{}, false, nil
		}
		return FollowCounts{}, false, fmt.Errorf("redis get follow counts: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return FollowCounts{}, false, nil
	}

	followers, err := strconv.ParseInt(fmt.Sprint(vals[0]), 10, 64)
	if err != nil {
		return FollowCounts{}, false, fmt.Errorf("parse followers count: %w", err)
	}
	following, err := strconv.ParseInt(fmt.Sprint(vals[1]), 10, 64)
	if err != nil {
		return FollowCounts{}, false, fmt.Errorf("parse following count: %w", err)
	}
	return FollowCounts{Followers: followers, Following: following}, true, nil
}

func (c *RedisCache) SetFollowCounts(ctx context.Context, userID uint, counts FollowCounts) error {
	key := followCountsKey(userID)
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, "followers", counts.Followers, "following", counts.Following)
	pipe.Expire(ctx, key, followCountsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set follow counts: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateFollowCounts(ctx context.Context, userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = followCountsKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate follow counts: %w", err)
	}
	return nil
}

func (c *RedisCache) MarkViewed(ctx context.Context, blogID, viewer string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, viewedKeyPrefix+blogID+":"+viewer, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis mark viewed: %w", err)
	}
	return ok, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
