package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const settlementPrefix = "settled:"

// SettlementRepo remembers which payment transactions were already reported
// as settled to a buyer.
type SettlementRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewSettlementRepo(client *goredis.Client, ttl time.Duration) *SettlementRepo {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &SettlementRepo{client: client, ttl: ttl}
}

// MarkSettled returns true only for the first call per buyer and transaction.
func (r *SettlementRepo) MarkSettled(ctx context.Context, buyerID, transactionID string) (bool, error) {
	if r.client == nil {
		return false, errNilClient
	}
	buyerID = strings.TrimSpace(buyerID)
	transactionID = strings.TrimSpace(transactionID)
	if buyerID == "" || transactionID == "" {
		return false, fmt.Errorf("invalid settlement payload")
	}

	ok, err := r.client.SetNX(ctx, settlementPrefix+buyerID+":"+transactionID, time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark settlement: %w", err)
	}
	return ok, nil
}
