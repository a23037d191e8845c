package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/domain/model"
	"github.com/ludora/storefront/internal/domain/rules"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("cart dependencies are not configured")
)

type Store interface {
	Put(ctx context.Context, buyerID string, item model.CartItem) error
	List(ctx context.Context, buyerID string) ([]model.CartItem, *time.Time, error)
	Remove(ctx context.Context, buyerID string, purchaseIDs ...string) error
	Replace(ctx context.Context, buyerID string, items []model.CartItem, syncedAt time.Time) error
	Clear(ctx context.Context, buyerID string) error
}

type PurchaseSource interface {
	ListPurchases(ctx context.Context, status enums.PaymentStatus) ([]model.Purchase, error)
}

// Service mirrors the buyer's pending purchases. The marketplace is the
// authority; Refresh overwrites the mirror with whatever it reports.
type Service struct {
	store     Store
	purchases PurchaseSource
	refreshes singleflight.Group
	now       func() time.Time
}

func NewService(store Store, purchases PurchaseSource) *Service {
	return &Service{
		store:     store,
		purchases: purchases,
		now:       time.Now,
	}
}

func (s *Service) Add(ctx context.Context, buyerID string, item model.CartItem) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if strings.TrimSpace(buyerID) == "" || item.PurchaseID.IsZero() {
		return ErrValidation
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now().UTC()
	}
	return s.store.Put(ctx, buyerID, item)
}

func (s *Service) Get(ctx context.Context, buyerID string) (model.Cart, error) {
	if s.store == nil {
		return model.Cart{}, ErrDependenciesNil
	}
	if strings.TrimSpace(buyerID) == "" {
		return model.Cart{}, ErrValidation
	}

	items, syncedAt, err := s.store.List(ctx, buyerID)
	if err != nil {
		return model.Cart{}, err
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return model.Cart{BuyerID: buyerID, Items: items, SyncedAt: syncedAt}, nil
}

func (s *Service) Remove(ctx context.Context, buyerID, purchaseID string) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if strings.TrimSpace(buyerID) == "" || strings.TrimSpace(purchaseID) == "" {
		return ErrValidation
	}
	return s.store.Remove(ctx, buyerID, strings.TrimSpace(purchaseID))
}

func (s *Service) Clear(ctx context.Context, buyerID string) error {
	if s.store == nil {
		return ErrDependenciesNil
	}
	if strings.TrimSpace(buyerID) == "" {
		return ErrValidation
	}
	return s.store.Clear(ctx, buyerID)
}

// Refresh re-reads pending purchases from the marketplace and replaces the
// mirror. Concurrent refreshes for one buyer share a single upstream call.
func (s *Service) Refresh(ctx context.Context, buyerID string) (model.Cart, error) {
	if s.store == nil || s.purchases == nil {
		return model.Cart{}, ErrDependenciesNil
	}
	if strings.TrimSpace(buyerID) == "" {
		return model.Cart{}, ErrValidation
	}

	// the shared call outlives any single caller that goes away
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.refreshes.Do(buyerID, func() (any, error) {
		return s.refresh(shared, buyerID)
	})
	if err != nil {
		return model.Cart{}, err
	}
	return v.(model.Cart), nil
}

func (s *Service) refresh(ctx context.Context, buyerID string) (model.Cart, error) {
	pending, err := s.purchases.ListPurchases(ctx, enums.PaymentStatusPending)
	if err != nil {
		return model.Cart{}, fmt.Errorf("list pending purchases: %w", err)
	}

	known, _, err := s.store.List(ctx, buyerID)
	if err != nil {
		return model.Cart{}, err
	}
	byID := make(map[model.ID]model.CartItem, len(known))
	for _, item := range known {
		byID[item.PurchaseID] = item
	}

	now := s.now().UTC()
	items := make([]model.CartItem, 0, len(pending))
	for _, p := range pending {
		if p.ID.IsZero() {
			continue
		}
		if p.PaymentStatus != "" && p.PaymentStatus != enums.PaymentStatusPending {
			continue
		}
		items = append(items, itemFromPurchase(p, byID[p.ID], now))
	}

	if err := s.store.Replace(ctx, buyerID, items, now); err != nil {
		return model.Cart{}, err
	}
	return model.Cart{BuyerID: buyerID, Items: items, SyncedAt: &now}, nil
}

// itemFromPurchase builds a cart line from the server record, keeping display
// fields the server does not return when the line was already known.
func itemFromPurchase(p model.Purchase, known model.CartItem, now time.Time) model.CartItem {
	item := model.CartItem{
		PurchaseID:  p.ID,
		ProductID:   p.PurchasableID,
		ProductType: p.PurchasableType,
		EntityID:    p.PurchasableID,
		Title:       known.Title,
		AddedAt:     known.AddedAt,
	}
	if !known.ProductID.IsZero() && item.ProductID.IsZero() {
		item.ProductID = known.ProductID
	}
	if !known.EntityID.IsZero() {
		item.EntityID = known.EntityID
	}
	item.Amount = known.Amount
	if len(p.PaymentAmount) > 0 {
		if amount, class, err := rules.ParsePrice(p.PaymentAmount); err == nil && class != rules.PriceInvalid {
			item.Amount = rules.FormatPrice(amount)
		}
	}
	if item.AddedAt.IsZero() {
		if p.CreatedAt != nil {
			item.AddedAt = p.CreatedAt.UTC()
		} else {
			item.AddedAt = now
		}
	}
	return item
}
