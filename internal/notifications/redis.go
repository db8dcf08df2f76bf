package notifications

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher is the pub/sub surface of pkg/redis.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) (int64, error)
	NotificationChannel(owner string) string
}

// RedisNotifier publishes each notification as JSON on the owner's channel.
type RedisNotifier struct {
	publisher Publisher
}

func NewRedisNotifier(publisher Publisher) *RedisNotifier {
	return &RedisNotifier{publisher: publisher}
}

func (r *RedisNotifier) Notify(ctx context.Context, owner string, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if _, err := r.publisher.Publish(ctx, r.publisher.NotificationChannel(owner), string(payload)); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
