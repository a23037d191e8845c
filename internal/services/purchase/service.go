package purchase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/domain/model"
	"github.com/ludora/storefront/internal/domain/rules"
	"github.com/ludora/storefront/internal/repo/marketapi"
	authsvc "github.com/ludora/storefront/internal/services/auth"
	feedbacksvc "github.com/ludora/storefront/internal/services/feedback"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrDependenciesNil   = errors.New("purchase dependencies are not configured")
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrNoPurchaseID      = errors.New("marketplace accepted the purchase without an id")
	ErrAlreadyProcessing = rules.ErrAlreadyProcessing
	ErrUnavailable       = rules.ErrUnavailable
)

const claimVia = "subscription"

type Resolver interface {
	Resolve(ctx context.Context, productID string) (model.Resolution, model.Product, error)
}

type Market interface {
	CreateEntityPurchase(ctx context.Context, in marketapi.EntityPurchaseRequest) (marketapi.PurchaseResult, error)
	CreatePaymentPurchase(ctx context.Context, in marketapi.PaymentPurchaseRequest, idempotencyKey string) (marketapi.PurchaseResult, error)
	GetPurchase(ctx context.Context, purchaseID string) (model.Purchase, error)
	UpdatePurchase(ctx context.Context, purchaseID string, in marketapi.PurchaseUpdate) (model.Purchase, error)
	DeletePurchase(ctx context.Context, purchaseID string) error
}

type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type RateLimiter interface {
	AllowPurchase(ctx context.Context, buyerID string) (int64, bool, error)
}

type Cart interface {
	Add(ctx context.Context, buyerID string, item model.CartItem) error
	Remove(ctx context.Context, buyerID, purchaseID string) error
}

type Reporter interface {
	Success(ctx context.Context, buyerID string, productID model.ID, message string) model.Notification
	Info(ctx context.Context, buyerID string, productID model.ID, message string) model.Notification
	Error(ctx context.Context, buyerID string, productID model.ID, err error) model.Notification
	Record(ctx context.Context, buyerID string, event feedbacksvc.Event)
}

type Config struct {
	GuardTTL           time.Duration
	CheckoutPath       string
	ProductDetailsPath string
}

type Dependencies struct {
	Logger      *zap.Logger
	Resolver    Resolver
	Market      Market
	Guard       Guard
	RateLimiter RateLimiter
	Cart        Cart
	Reporter    Reporter
}

type Service struct {
	log      *zap.Logger
	resolver Resolver
	market   Market
	guard    Guard
	limiter  RateLimiter
	cart     Cart
	reporter Reporter
	cfg      Config
	now      func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.GuardTTL <= 0 {
		cfg.GuardTTL = 30 * time.Second
	}
	if cfg.CheckoutPath == "" {
		cfg.CheckoutPath = "/checkout"
	}
	if cfg.ProductDetailsPath == "" {
		cfg.ProductDetailsPath = "/product-details"
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		log:      log,
		resolver: deps.Resolver,
		market:   deps.Market,
		guard:    deps.Guard,
		limiter:  deps.RateLimiter,
		cart:     deps.Cart,
		reporter: deps.Reporter,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Initiate runs one purchase intent for the calling buyer. At most one intent
// per buyer and product is in flight at a time; a second one fails with
// ErrAlreadyProcessing without reaching the marketplace. Nothing is retried.
func (s *Service) Initiate(ctx context.Context, productID string, metadata map[string]any) (model.Outcome, error) {
	identity, err := authsvc.RequireIdentity(ctx)
	if err != nil {
		return model.Outcome{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return model.Outcome{}, ErrValidation
	}
	if s.resolver == nil || s.market == nil || s.guard == nil {
		return model.Outcome{}, ErrDependenciesNil
	}
	buyerID := identity.BuyerID
	pid := model.ID(productID)

	if err := s.checkRate(ctx, buyerID); err != nil {
		s.report(ctx, buyerID, pid, err)
		return model.Outcome{}, err
	}

	guardKey := buyerID + ":" + productID
	token, acquired, err := s.guard.Acquire(ctx, guardKey, s.cfg.GuardTTL)
	if err != nil {
		err = fmt.Errorf("acquire purchase guard: %w", err)
		s.report(ctx, buyerID, pid, err)
		return model.Outcome{}, err
	}
	if !acquired {
		s.report(ctx, buyerID, pid, ErrAlreadyProcessing)
		return model.Outcome{}, ErrAlreadyProcessing
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), guardKey, token); err != nil {
			s.log.Warn("release purchase guard", zap.String("key", guardKey), zap.Error(err))
		}
	}()

	outcome, err := s.initiate(ctx, buyerID, productID, token, metadata)
	if err != nil {
		s.report(ctx, buyerID, pid, err)
		return model.Outcome{}, err
	}

	if s.reporter != nil {
		if outcome.Kind == enums.OutcomeCheckout {
			s.reporter.Info(ctx, buyerID, pid, feedbacksvc.MessageAddedCart)
		} else if msg := successMessage(outcome.Kind); msg != "" {
			s.reporter.Success(ctx, buyerID, pid, msg)
		}
		s.reporter.Record(ctx, buyerID, feedbacksvc.Event{
			Name:       "purchase_initiated",
			ProductID:  pid,
			PurchaseID: outcome.PurchaseID,
			Outcome:    string(outcome.Kind),
			Props: map[string]any{
				"resolution": string(outcome.Resolution.Kind),
				"is_free":    outcome.Resolution.IsFree,
				"price":      outcome.Resolution.Price,
			},
		})
	}
	return outcome, nil
}

func (s *Service) initiate(ctx context.Context, buyerID, productID, idempotencyKey string, metadata map[string]any) (model.Outcome, error) {
	res, product, err := s.resolver.Resolve(ctx, productID)
	if err != nil {
		return model.Outcome{}, err
	}

	switch res.Kind {
	case enums.ResolutionOwned:
		return model.Outcome{
			Kind:       enums.OutcomeOwned,
			Redirect:   s.productDetails(res.ProductID),
			Resolution: res,
		}, nil

	case enums.ResolutionClaimable:
		meta := withMetadata(metadata, "claim_via", claimVia)
		result, err := s.market.CreateEntityPurchase(ctx, marketapi.EntityPurchaseRequest{
			EntityType: res.ProductType,
			EntityID:   res.EntityID.String(),
			Metadata:   meta,
		})
		if err != nil {
			return model.Outcome{}, fmt.Errorf("claim product: %w", err)
		}
		return model.Outcome{
			Kind:       enums.OutcomeClaimed,
			PurchaseID: result.ID,
			Redirect:   s.productDetails(res.ProductID),
			Resolution: res,
		}, nil

	case enums.ResolutionPurchasable:
		if res.IsFree {
			result, err := s.market.CreateEntityPurchase(ctx, marketapi.EntityPurchaseRequest{
				EntityType: res.ProductType,
				EntityID:   res.EntityID.String(),
				Metadata:   metadata,
			})
			if err != nil {
				return model.Outcome{}, fmt.Errorf("create free purchase: %w", err)
			}
			return model.Outcome{
				Kind:       enums.OutcomeCompleted,
				PurchaseID: result.ID,
				Redirect:   s.productDetails(res.ProductID),
				Resolution: res,
			}, nil
		}
		return s.paidPurchase(ctx, buyerID, idempotencyKey, res, product, metadata)

	default:
		reason := res.Reason
		if reason == "" {
			reason = rules.ReasonNotOffered
		}
		return model.Outcome{}, fmt.Errorf("%w: %s", ErrUnavailable, reason)
	}
}

func (s *Service) paidPurchase(
	ctx context.Context,
	buyerID, idempotencyKey string,
	res model.Resolution,
	product model.Product,
	metadata map[string]any,
) (model.Outcome, error) {
	result, err := s.market.CreatePaymentPurchase(ctx, marketapi.PaymentPurchaseRequest{
		PurchasableType: res.ProductType,
		PurchasableID:   res.EntityID.String(),
		PaymentAmount:   res.Price,
		Metadata:        metadata,
	}, idempotencyKey)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("create purchase: %w", err)
	}

	if result.IsCompleted() {
		return model.Outcome{
			Kind:       enums.OutcomeCompleted,
			PurchaseID: result.ID,
			Redirect:   s.productDetails(res.ProductID),
			Resolution: res,
		}, nil
	}
	if result.ID.IsZero() {
		return model.Outcome{}, ErrNoPurchaseID
	}

	if s.cart != nil {
		err := s.cart.Add(ctx, buyerID, model.CartItem{
			PurchaseID:  result.ID,
			ProductID:   res.ProductID,
			ProductType: res.ProductType,
			EntityID:    res.EntityID,
			Title:       product.Title,
			Amount:      res.Price,
			AddedAt:     s.now().UTC(),
		})
		if err != nil {
			// the purchase exists upstream; a later refresh restores the line
			s.log.Warn("add purchase to cart",
				zap.String("buyer_id", buyerID),
				zap.String("purchase_id", result.ID.String()),
				zap.Error(err),
			)
		}
	}

	return model.Outcome{
		Kind:       enums.OutcomeCheckout,
		PurchaseID: result.ID,
		Redirect:   s.cfg.CheckoutPath,
		Resolution: res,
	}, nil
}

func (s *Service) Get(ctx context.Context, purchaseID string) (model.Purchase, error) {
	if _, err := authsvc.RequireIdentity(ctx); err != nil {
		return model.Purchase{}, err
	}
	if strings.TrimSpace(purchaseID) == "" {
		return model.Purchase{}, ErrValidation
	}
	if s.market == nil {
		return model.Purchase{}, ErrDependenciesNil
	}

	p, err := s.market.GetPurchase(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, mapPurchaseErr(err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, purchaseID string, in marketapi.PurchaseUpdate) (model.Purchase, error) {
	identity, err := authsvc.RequireIdentity(ctx)
	if err != nil {
		return model.Purchase{}, err
	}
	if strings.TrimSpace(purchaseID) == "" {
		return model.Purchase{}, ErrValidation
	}
	if s.market == nil {
		return model.Purchase{}, ErrDependenciesNil
	}
	if in.PaymentStatus != "" {
		in.PaymentStatus = enums.NormalizePaymentStatus(string(in.PaymentStatus))
		if !in.PaymentStatus.Valid() {
			return model.Purchase{}, ErrValidation
		}
	}

	p, err := s.market.UpdatePurchase(ctx, purchaseID, in)
	if err != nil {
		return model.Purchase{}, mapPurchaseErr(err)
	}
	if s.cart != nil && p.PaymentStatus != "" && p.PaymentStatus != enums.PaymentStatusPending {
		if err := s.cart.Remove(ctx, identity.BuyerID, purchaseID); err != nil {
			s.log.Warn("drop updated purchase from cart", zap.String("purchase_id", purchaseID), zap.Error(err))
		}
	}
	return p, nil
}

// Cancel deletes a pending purchase upstream and drops it from the cart.
func (s *Service) Cancel(ctx context.Context, purchaseID string) error {
	identity, err := authsvc.RequireIdentity(ctx)
	if err != nil {
		return err
	}
	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return ErrValidation
	}
	if s.market == nil {
		return ErrDependenciesNil
	}

	if err := s.market.DeletePurchase(ctx, purchaseID); err != nil {
		return mapPurchaseErr(err)
	}
	if s.cart != nil {
		if err := s.cart.Remove(ctx, identity.BuyerID, purchaseID); err != nil {
			s.log.Warn("drop cancelled purchase from cart", zap.String("purchase_id", purchaseID), zap.Error(err))
		}
	}
	if s.reporter != nil {
		s.reporter.Record(ctx, identity.BuyerID, feedbacksvc.Event{
			Name:       "purchase_cancelled",
			PurchaseID: model.ID(purchaseID),
			Outcome:    string(enums.PaymentStatusCancelled),
		})
	}
	return nil
}

// checkRate fails open when the limiter store is unreachable.
func (s *Service) checkRate(ctx context.Context, buyerID string) error {
	if s.limiter == nil {
		return nil
	}
	retryAfter, allowed, err := s.limiter.AllowPurchase(ctx, buyerID)
	if err != nil {
		s.log.Warn("purchase rate limiter unavailable", zap.String("buyer_id", buyerID), zap.Error(err))
		return nil
	}
	if !allowed {
		return rules.TooFastError{RetryAfterSec: retryAfter}
	}
	return nil
}

func (s *Service) report(ctx context.Context, buyerID string, productID model.ID, err error) {
	if s.reporter == nil {
		return
	}
	s.reporter.Error(ctx, buyerID, productID, err)
}

func (s *Service) productDetails(productID model.ID) string {
	return s.cfg.ProductDetailsPath + "?product=" + url.QueryEscape(productID.String())
}

func successMessage(kind enums.OutcomeKind) string {
	switch kind {
	case enums.OutcomeCompleted:
		return feedbacksvc.MessagePurchased
	case enums.OutcomeClaimed:
		return feedbacksvc.MessageClaimed
	default:
		return ""
	}
}

func withMetadata(in map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	out[key] = value
	return out
}

func mapPurchaseErr(err error) error {
	if errors.Is(err, marketapi.ErrPurchaseNotFound) {
		return ErrPurchaseNotFound
	}
	return err
}
