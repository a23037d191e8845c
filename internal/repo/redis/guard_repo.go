package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const guardPrefix = "inflight:"

var releaseGuardScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GuardRepo holds short lived in-flight markers so one purchase intent per
// buyer and product is processed at a time across all instances.
type GuardRepo struct {
	client *goredis.Client
}

func NewGuardRepo(client *goredis.Client) *GuardRepo {
	return &GuardRepo{client: client}
}

func (r *GuardRepo) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if r.client == nil {
		return "", false, errNilClient
	}
	key = strings.TrimSpace(key)
	if key == "" || ttl <= 0 {
		return "", false, fmt.Errorf("invalid guard payload")
	}

	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, guardPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire guard: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the marker only if it is still owned by token.
func (r *GuardRepo) Release(ctx context.Context, key, token string) error {
	if r.client == nil {
		return errNilClient
	}
	if strings.TrimSpace(key) == "" || token == "" {
		return nil
	}
	if err := releaseGuardScript.Run(ctx, r.client, []string{guardPrefix + key}, token).Err(); err != nil && err != goredis.Nil {
		return fmt.Errorf("release guard: %w", err)
	}
	return nil
}
