package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	minuteWindow = time.Minute
	tenSecWindow = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// Limiter caps purchase attempts per buyer over a minute and a ten second
// window. A zero limit disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

func (l *Limiter) AllowPurchase(ctx context.Context, buyerID string) (int64, bool, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return 0, false, fmt.Errorf("invalid buyer id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, w := range l.windows(buyerID) {
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.size)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

// RetryAfterPurchase reports how long the buyer has to wait without counting a hit.
func (l *Limiter) RetryAfterPurchase(ctx context.Context, buyerID string) (int64, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return 0, fmt.Errorf("invalid buyer id")
	}
	if l.store == nil {
		return 0, fmt.Errorf("rate limiter store is nil")
	}

	var retryAfterSec int64
	for _, w := range l.windows(buyerID) {
		count, ttl, err := l.store.WindowState(ctx, w.key)
		if err != nil {
			return 0, err
		}
		if count >= int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}
	return retryAfterSec, nil
}

type window struct {
	key   string
	size  time.Duration
	limit int
}

func (l *Limiter) windows(buyerID string) []window {
	out := make([]window, 0, 2)
	if l.perMinute > 0 {
		out = append(out, window{key: "rate:purchase:min:" + buyerID, size: minuteWindow, limit: l.perMinute})
	}
	if l.per10Sec > 0 {
		out = append(out, window{key: "rate:purchase:10s:" + buyerID, size: tenSecWindow, limit: l.per10Sec})
	}
	return out
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return max(sec, 1)
}
