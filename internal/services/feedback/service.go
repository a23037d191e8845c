package feedback

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/domain/model"
	pgrepo "github.com/ludora/storefront/internal/repo/postgres"
)

var ErrDependenciesNil = errors.New("feedback dependencies are not configured")

type NotificationStore interface {
	Push(ctx context.Context, buyerID string, n model.Notification) error
	Drain(ctx context.Context, buyerID string) ([]model.Notification, error)
}

type AuditStore interface {
	InsertBatch(ctx context.Context, buyerID string, events []pgrepo.PurchaseEventRecord) error
	ListByBuyer(ctx context.Context, buyerID string, limit int) ([]pgrepo.PurchaseEventRow, error)
}

type Dependencies struct {
	Logger        *zap.Logger
	Notifications NotificationStore
	Audit         AuditStore
}

// Service is the single place purchase outcomes are reported: a log line, a
// queued toast for the buyer and an audit row. Reporting never fails the
// caller; store errors are logged and dropped.
type Service struct {
	log           *zap.Logger
	notifications NotificationStore
	audit         AuditStore
	now           func() time.Time
}

func NewService(deps Dependencies) *Service {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		log:           log,
		notifications: deps.Notifications,
		audit:         deps.Audit,
		now:           time.Now,
	}
}

type Event struct {
	Name       string
	ProductID  model.ID
	PurchaseID model.ID
	Outcome    string
	Props      map[string]any
}

func (s *Service) Success(ctx context.Context, buyerID string, productID model.ID, message string) model.Notification {
	n := s.newNotification(enums.NotificationSuccess, productID, message)
	s.log.Info("purchase feedback",
		zap.String("buyer_id", buyerID),
		zap.String("product_id", productID.String()),
		zap.String("message", message),
	)
	s.push(ctx, buyerID, n)
	return n
}

func (s *Service) Info(ctx context.Context, buyerID string, productID model.ID, message string) model.Notification {
	n := s.newNotification(enums.NotificationInfo, productID, message)
	s.push(ctx, buyerID, n)
	return n
}

func (s *Service) Error(ctx context.Context, buyerID string, productID model.ID, err error) model.Notification {
	message := Message(err)
	n := s.newNotification(enums.NotificationError, productID, message)
	s.log.Warn("purchase failed",
		zap.String("buyer_id", buyerID),
		zap.String("product_id", productID.String()),
		zap.String("message", message),
		zap.Error(err),
	)
	s.push(ctx, buyerID, n)
	s.Record(ctx, buyerID, Event{
		Name:      "purchase_failed",
		ProductID: productID,
		Outcome:   "error",
		Props:     map[string]any{"error": err.Error(), "message": message},
	})
	return n
}

// Record writes an audit event. It is a no-op when auditing is disabled.
func (s *Service) Record(ctx context.Context, buyerID string, event Event) {
	if s.audit == nil || buyerID == "" {
		return
	}
	err := s.audit.InsertBatch(ctx, buyerID, []pgrepo.PurchaseEventRecord{{
		Name:       event.Name,
		ProductID:  event.ProductID.String(),
		PurchaseID: event.PurchaseID.String(),
		Outcome:    event.Outcome,
		OccurredAt: s.now().UTC(),
		Props:      event.Props,
	}})
	if err != nil {
		s.log.Warn("write purchase audit event", zap.String("event", event.Name), zap.Error(err))
	}
}

func (s *Service) Drain(ctx context.Context, buyerID string) ([]model.Notification, error) {
	if s.notifications == nil {
		return nil, ErrDependenciesNil
	}
	items, err := s.notifications.Drain(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Notification{}
	}
	return items, nil
}

func (s *Service) History(ctx context.Context, buyerID string, limit int) ([]pgrepo.PurchaseEventRow, error) {
	if s.audit == nil {
		return []pgrepo.PurchaseEventRow{}, nil
	}
	rows, err := s.audit.ListByBuyer(ctx, buyerID, limit)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []pgrepo.PurchaseEventRow{}
	}
	return rows, nil
}

func (s *Service) newNotification(level enums.NotificationLevel, productID model.ID, message string) model.Notification {
	return model.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		ProductID: productID,
		CreatedAt: s.now().UTC(),
	}
}

func (s *Service) push(ctx context.Context, buyerID string, n model.Notification) {
	if s.notifications == nil || buyerID == "" {
		return
	}
	if err := s.notifications.Push(ctx, buyerID, n); err != nil {
		s.log.Warn("queue notification", zap.String("buyer_id", buyerID), zap.Error(err))
	}
}
