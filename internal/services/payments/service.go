package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ludora/storefront/internal/domain/model"
	"github.com/ludora/storefront/internal/repo/marketapi"
	authsvc "github.com/ludora/storefront/internal/services/auth"
	feedbacksvc "github.com/ludora/storefront/internal/services/feedback"
)

const ProviderPayplus = "payplus"

var (
	ErrValidation      = errors.New("validation error")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrDependenciesNil = errors.New("payments dependencies are not configured")
)

type Gateway interface {
	StartPayment(ctx context.Context, in marketapi.StartPaymentRequest) (marketapi.PaymentPage, error)
	CreatePayplusPaymentPage(ctx context.Context, in marketapi.PayplusPageRequest) (marketapi.PaymentPage, error)
	GetPaymentStatus(ctx context.Context, transactionID string) (marketapi.PaymentStatus, error)
}

type Cart interface {
	Get(ctx context.Context, buyerID string) (model.Cart, error)
	Remove(ctx context.Context, buyerID, purchaseID string) error
	Clear(ctx context.Context, buyerID string) error
}

type Reporter interface {
	Success(ctx context.Context, buyerID string, productID model.ID, message string) model.Notification
	Record(ctx context.Context, buyerID string, event feedbacksvc.Event)
}

// SettlementMarker reports true only the first time a buyer's transaction is
// seen as settled.
type SettlementMarker interface {
	MarkSettled(ctx context.Context, buyerID, transactionID string) (bool, error)
}

type Dependencies struct {
	Logger      *zap.Logger
	Gateway     Gateway
	Cart        Cart
	Reporter    Reporter
	Settlements SettlementMarker
}

type Service struct {
	log         *zap.Logger
	gateway     Gateway
	cart        Cart
	reporter    Reporter
	settlements SettlementMarker
	env         string
}

func NewService(deps Dependencies, env string) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		log:         log,
		gateway:     deps.Gateway,
		cart:        deps.Cart,
		reporter:    deps.Reporter,
		settlements: deps.Settlements,
		env:         env,
	}
}

type StartInput struct {
	Provider  string
	ReturnURL string
}

type StartResult struct {
	TransactionID string   `json:"transaction_id"`
	PaymentURL    string   `json:"payment_url"`
	PurchaseIDs   []string `json:"purchase_ids"`
}

// Start opens a payment page for every purchase in the buyer's cart.
func (s *Service) Start(ctx context.Context, in StartInput) (StartResult, error) {
	identity, err := authsvc.RequireIdentity(ctx)
	if err != nil {
		return StartResult{}, err
	}
	if s.gateway == nil || s.cart == nil {
		return StartResult{}, ErrDependenciesNil
	}

	cart, err := s.cart.Get(ctx, identity.BuyerID)
	if err != nil {
		return StartResult{}, fmt.Errorf("load cart: %w", err)
	}
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		if !item.PurchaseID.IsZero() {
			ids = append(ids, item.PurchaseID.String())
		}
	}
	if len(ids) == 0 {
		return StartResult{}, ErrEmptyCart
	}

	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	var page marketapi.PaymentPage
	if provider == ProviderPayplus {
		page, err = s.gateway.CreatePayplusPaymentPage(ctx, marketapi.PayplusPageRequest{
			PurchaseIDs: ids,
			ReturnURL:   in.ReturnURL,
			Environment: payplusEnvironment(s.env),
		})
	} else {
		page, err = s.gateway.StartPayment(ctx, marketapi.StartPaymentRequest{
			PurchaseIDs: ids,
			Provider:    provider,
			ReturnURL:   in.ReturnURL,
		})
	}
	if err != nil {
		return StartResult{}, fmt.Errorf("start payment: %w", err)
	}
	if page.URL() == "" {
		return StartResult{}, fmt.Errorf("start payment: marketplace returned no payment url")
	}

	if s.reporter != nil {
		s.reporter.Record(ctx, identity.BuyerID, feedbacksvc.Event{
			Name:    "checkout_started",
			Outcome: "pending",
			Props: map[string]any{
				"transaction_id": page.TransactionID,
				"provider":       provider,
				"purchase_ids":   ids,
			},
		})
	}

	return StartResult{
		TransactionID: page.TransactionID,
		PaymentURL:    page.URL(),
		PurchaseIDs:   ids,
	}, nil
}

// Status reads the transaction state and clears settled purchases from the cart.
// The buyer is told about a settlement once, however often the client polls.
func (s *Service) Status(ctx context.Context, transactionID string) (marketapi.PaymentStatus, error) {
	identity, err := authsvc.RequireIdentity(ctx)
	if err != nil {
		return marketapi.PaymentStatus{}, err
	}
	if strings.TrimSpace(transactionID) == "" {
		return marketapi.PaymentStatus{}, ErrValidation
	}
	if s.gateway == nil {
		return marketapi.PaymentStatus{}, ErrDependenciesNil
	}

	status, err := s.gateway.GetPaymentStatus(ctx, transactionID)
	if err != nil {
		return marketapi.PaymentStatus{}, err
	}
	if !status.Status.Settled() || s.cart == nil {
		return status, nil
	}

	if len(status.PurchaseIDs) == 0 {
		err = s.cart.Clear(ctx, identity.BuyerID)
	} else {
		for _, id := range status.PurchaseIDs {
			if err = s.cart.Remove(ctx, identity.BuyerID, id); err != nil {
				break
			}
		}
	}
	if err != nil {
		s.log.Warn("clear settled purchases from cart", zap.String("transaction_id", transactionID), zap.Error(err))
	}

	if s.reporter != nil && s.firstSettlement(ctx, identity.BuyerID, transactionID) {
		s.reporter.Success(ctx, identity.BuyerID, "", feedbacksvc.MessagePurchased)
		s.reporter.Record(ctx, identity.BuyerID, feedbacksvc.Event{
			Name:    "checkout_settled",
			Outcome: string(status.Status),
			Props:   map[string]any{"transaction_id": status.TransactionID},
		})
	}
	return status, nil
}

func (s *Service) firstSettlement(ctx context.Context, buyerID, transactionID string) bool {
	if s.settlements == nil {
		return true
	}
	first, err := s.settlements.MarkSettled(ctx, buyerID, strings.TrimSpace(transactionID))
	if err != nil {
		s.log.Warn("mark settled transaction", zap.String("transaction_id", transactionID), zap.Error(err))
		return true
	}
	return first
}

func payplusEnvironment(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	default:
		return "test"
	}
}
