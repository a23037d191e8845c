package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ludora/storefront/internal/domain/model"
)

const notificationsPrefix = "notifications:"

type NotificationRepo struct {
	client *goredis.Client
	max    int
	ttl    time.Duration
}

func NewNotificationRepo(client *goredis.Client, max int, ttl time.Duration) *NotificationRepo {
	if max <= 0 {
		max = 50
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &NotificationRepo{client: client, max: max, ttl: ttl}
}

// Push keeps the newest entries only.
func (r *NotificationRepo) Push(ctx context.Context, buyerID string, n model.Notification) error {
	if r.client == nil {
		return errNilClient
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	key := notificationsPrefix + buyerID
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, int64(r.max-1))
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

// Drain returns pending notifications oldest first and removes them.
func (r *NotificationRepo) Drain(ctx context.Context, buyerID string) ([]model.Notification, error) {
	if r.client == nil {
		return nil, errNilClient
	}

	key := notificationsPrefix + buyerID
	pipe := r.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("drain notifications: %w", err)
	}

	raw := rangeCmd.Val()
	out := make([]model.Notification, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var n model.Notification
		if err := json.Unmarshal([]byte(raw[i]), &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
