package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/domain/model"
	redrepo "github.com/ludora/storefront/internal/repo/redis"
)

type purchaseSourceStub struct {
	purchases []model.Purchase
	err       error
	calls     atomic.Int32
	started   chan struct{}
	release   chan struct{}
	cancelled atomic.Bool
}

func (s *purchaseSourceStub) ListPurchases(ctx context.Context, status enums.PaymentStatus) ([]model.Purchase, error) {
	s.calls.Add(1)
	if status != enums.PaymentStatusPending {
		return nil, errors.New("unexpected status filter")
	}
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if ctx.Err() != nil {
		s.cancelled.Store(true)
		return nil, ctx.Err()
	}
	return s.purchases, s.err
}

func TestAddGetRemoveClear(t *testing.T) {
	svc, mr, client := newCartService(t, &purchaseSourceStub{})
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	if err := svc.Add(ctx, "buyer", model.CartItem{PurchaseID: "pur-1", ProductID: "p1", Amount: "49"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Add(ctx, "buyer", model.CartItem{ProductID: "p2"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing purchase id, got %v", err)
	}

	c, err := svc.Get(ctx, "buyer")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].AddedAt.IsZero() {
		t.Fatalf("unexpected cart: %+v", c)
	}

	if err := svc.Remove(ctx, "buyer", "pur-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	c, _ = svc.Get(ctx, "buyer")
	if len(c.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", c.Items)
	}

	_ = svc.Add(ctx, "buyer", model.CartItem{PurchaseID: "pur-2"})
	if err := svc.Clear(ctx, "buyer"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	c, _ = svc.Get(ctx, "buyer")
	if len(c.Items) != 0 {
		t.Fatalf("expected cleared cart, got %+v", c.Items)
	}
}

func TestRefreshServerWins(t *testing.T) {
	created := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	src := &purchaseSourceStub{purchases: []model.Purchase{
		{ID: "pur-1", PurchasableID: "p1", PurchasableType: enums.ProductTypeFile, PaymentStatus: enums.PaymentStatusPending, PaymentAmount: json.RawMessage(`49.5`), CreatedAt: &created},
		{ID: "pur-3", PurchasableID: "p3", PurchasableType: enums.ProductTypeCourse, PaymentStatus: enums.PaymentStatusPaid},
	}}
	svc, mr, client := newCartService(t, src)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	_ = svc.Add(ctx, "buyer", model.CartItem{PurchaseID: "pur-1", ProductID: "p1", Title: "חוברת עבודה"})
	_ = svc.Add(ctx, "buyer", model.CartItem{PurchaseID: "pur-stale", ProductID: "old"})

	c, err := svc.Refresh(ctx, "buyer")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("expected only the pending server purchase, got %+v", c.Items)
	}
	item := c.Items[0]
	if item.PurchaseID != "pur-1" || item.Amount != "49.50" || item.Title != "חוברת עבודה" {
		t.Fatalf("unexpected refreshed item: %+v", item)
	}
	if c.SyncedAt == nil {
		t.Fatalf("expected synced_at after refresh")
	}

	stored, err := svc.Get(ctx, "buyer")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].PurchaseID != "pur-1" || stored.SyncedAt == nil {
		t.Fatalf("mirror not replaced: %+v", stored)
	}
}

func TestRefreshFailureKeepsMirror(t *testing.T) {
	src := &purchaseSourceStub{err: errors.New("upstream down")}
	svc, mr, client := newCartService(t, src)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	_ = svc.Add(ctx, "buyer", model.CartItem{PurchaseID: "pur-1"})

	if _, err := svc.Refresh(ctx, "buyer"); err == nil {
		t.Fatalf("expected refresh error")
	}
	c, _ := svc.Get(ctx, "buyer")
	if len(c.Items) != 1 {
		t.Fatalf("failed refresh must not touch the mirror: %+v", c.Items)
	}
}

func TestRefreshCoalescesConcurrentCalls(t *testing.T) {
	src := &purchaseSourceStub{
		purchases: []model.Purchase{{ID: "pur-1", PurchasableID: "p1"}},
		started:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	svc, mr, client := newCartService(t, src)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Refresh(ctx, "buyer")
		errs <- err
	}()
	<-src.started

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, "buyer")
			errs <- err
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(src.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func newCartService(t *testing.T, src PurchaseSource) (*Service, *miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	return NewService(redrepo.NewCartRepo(client, time.Hour), src), mr, client
}

func TestRefreshSurvivesFirstCallerCancel(t *testing.T) {
	src := &purchaseSourceStub{
		purchases: []model.Purchase{{ID: "pur-1", PurchasableID: "p1"}},
		started:   make(chan struct{}, 1),
		release:   make(chan struct{}),
	}
	svc, mr, client := newCartService(t, src)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(firstCtx, "buyer")
		firstDone <- err
	}()
	<-src.started

	secondDone := make(chan error, 1)
	var second model.Cart
	go func() {
		cart, err := svc.Refresh(context.Background(), "buyer")
		second = cart
		secondDone <- err
	}()
	time.Sleep(100 * time.Millisecond)

	cancelFirst()
	close(src.release)

	if err := <-secondDone; err != nil {
		t.Fatalf("waiting caller must not inherit the first caller's cancel: %v", err)
	}
	<-firstDone
	if src.cancelled.Load() {
		t.Fatalf("shared refresh saw a cancelled context")
	}
	if len(second.Items) != 1 || second.Items[0].PurchaseID != "pur-1" {
		t.Fatalf("unexpected refreshed cart: %+v", second.Items)
	}
}
