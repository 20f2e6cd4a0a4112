package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"
)

var ctx = context.Background()

// RedisPublisher publishes alerts over redis pub/sub. Subscribers that
// are offline simply miss the alert, the persisted notification is the
// source of truth.
type RedisPublisher struct {
	inner *redis.Client
}

func NewRedisPublisher() *RedisPublisher {
	return &RedisPublisher{
		inner: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
			Password: os.Getenv("REDIS_PASSWD"),
			DB:       0, // use default DB
		})}
}

func (p *RedisPublisher) Publish(channel string, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	return p.inner.Publish(ctx, channel, payload).Err()
}

var _ Publisher = (*RedisPublisher)(nil)
