package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ludora/storefront/internal/domain/model"
)

const (
	cartPrefix       = "cart:"
	cartSyncedSuffix = ":synced_at"
)

type CartRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewCartRepo(client *goredis.Client, ttl time.Duration) *CartRepo {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &CartRepo{client: client, ttl: ttl}
}

func (r *CartRepo) Put(ctx context.Context, buyerID string, item model.CartItem) error {
	if r.client == nil {
		return errNilClient
	}
	if strings.TrimSpace(buyerID) == "" || item.PurchaseID.IsZero() {
		return fmt.Errorf("invalid cart item payload")
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal cart item: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, cartKey(buyerID), item.PurchaseID.String(), raw)
	pipe.Expire(ctx, cartKey(buyerID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put cart item: %w", err)
	}
	return nil
}

func (r *CartRepo) List(ctx context.Context, buyerID string) ([]model.CartItem, *time.Time, error) {
	if r.client == nil {
		return nil, nil, errNilClient
	}

	pipe := r.client.Pipeline()
	itemsCmd := pipe.HGetAll(ctx, cartKey(buyerID))
	syncedCmd := pipe.Get(ctx, cartKey(buyerID)+cartSyncedSuffix)
	if _, err := pipe.Exec(ctx); err != nil && err != goredis.Nil {
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}

	items := make([]model.CartItem, 0, len(itemsCmd.Val()))
	for _, raw := range itemsCmd.Val() {
		var item model.CartItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].PurchaseID < items[j].PurchaseID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})

	var syncedAt *time.Time
	if unix, err := syncedCmd.Int64(); err == nil && unix > 0 {
		t := time.Unix(unix, 0).UTC()
		syncedAt = &t
	}

	return items, syncedAt, nil
}

func (r *CartRepo) Remove(ctx context.Context, buyerID string, purchaseIDs ...string) error {
	if r.client == nil {
		return errNilClient
	}
	if len(purchaseIDs) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, cartKey(buyerID), purchaseIDs...).Err(); err != nil {
		return fmt.Errorf("remove cart items: %w", err)
	}
	return nil
}

// Replace swaps the whole cart for the given items in one transaction.
func (r *CartRepo) Replace(ctx context.Context, buyerID string, items []model.CartItem, syncedAt time.Time) error {
	if r.client == nil {
		return errNilClient
	}
	if strings.TrimSpace(buyerID) == "" {
		return fmt.Errorf("buyer id is required")
	}

	fields := make(map[string]any, len(items))
	for _, item := range items {
		if item.PurchaseID.IsZero() {
			continue
		}
		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal cart item: %w", err)
		}
		fields[item.PurchaseID.String()] = raw
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, cartKey(buyerID))
	if len(fields) > 0 {
		pipe.HSet(ctx, cartKey(buyerID), fields)
		pipe.Expire(ctx, cartKey(buyerID), r.ttl)
	}
	pipe.Set(ctx, cartKey(buyerID)+cartSyncedSuffix, syncedAt.UTC().Unix(), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace cart: %w", err)
	}
	return nil
}

func (r *CartRepo) Clear(ctx context.Context, buyerID string) error {
	if r.client == nil {
		return errNilClient
	}
	if err := r.client.Del(ctx, cartKey(buyerID), cartKey(buyerID)+cartSyncedSuffix).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func cartKey(buyerID string) string {
	return cartPrefix + buyerID
}
