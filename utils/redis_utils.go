package utils

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

type RedisClient struct {
	inner *redis.Client
}

var ctx = context.Background()

func GetRedisClient() *RedisClient {
	return &RedisClient{
		inner: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
			Password: os.Getenv("REDIS_PASSWD"),
			DB:       0, // use default DB
		})}
}

// UnreadNotificationCountKey is the cache key holding a user's unread
// notification count. The cached value must be invalidated whenever live
// notifications of that user are destroyed.
func UnreadNotificationCountKey(userId string) string {
	return fmt.Sprintf("unread_notification_count_%s", userId)
}

// GetCachedUnreadNotificationCount returns the cached unread count for the
// user. The second return value is false on cache miss.
func (r *RedisClient) GetCachedUnreadNotificationCount(userId string) (int, bool, error) {
	val, err := r.inner.Get(ctx, UnreadNotificationCountKey(userId)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// SetCachedUnreadNotificationCount caches the unread count for the user.
func (r *RedisClient) SetCachedUnreadNotificationCount(userId string, count int) error {
	return r.inner.Set(ctx, UnreadNotificationCountKey(userId), strconv.Itoa(count), 0).Err()
}

// InvalidateUnreadNotificationCount drops the cached unread count so the
// next read recomputes it from the DB.
func (r *RedisClient) InvalidateUnreadNotificationCount(userId string) error {
	return r.inner.Del(ctx, UnreadNotificationCountKey(userId)).Err()
}
