package templates

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ludora/storefront/internal/domain/model"
)

var ErrDependenciesNil = errors.New("templates dependencies are not configured")

type Source interface {
	SystemTemplates(ctx context.Context, templateType string) ([]model.SystemTemplate, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, target any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service serves branding and watermark templates from a short lived cache.
// Cache failures fall through to the marketplace.
type Service struct {
	log    *zap.Logger
	source Source
	cache  Cache
	ttl    time.Duration
	fills  singleflight.Group
}

func NewService(log *zap.Logger, source Source, cache Cache, ttl time.Duration) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{log: log, source: source, cache: cache, ttl: ttl}
}

func (s *Service) List(ctx context.Context, templateType string) ([]model.SystemTemplate, error) {
	if s.source == nil {
		return nil, ErrDependenciesNil
	}
	templateType = strings.ToLower(strings.TrimSpace(templateType))
	key := "system-templates:" + templateType

	if s.cache != nil {
		var cached []model.SystemTemplate
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.Warn("read template cache", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	v, err, _ := s.fills.Do(key, func() (any, error) {
		items, err := s.source.SystemTemplates(ctx, templateType)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []model.SystemTemplate{}
		}
		if s.cache != nil {
			if err := s.cache.SetJSON(ctx, key, items, s.ttl); err != nil {
				s.log.Warn("write template cache", zap.String("key", key), zap.Error(err))
			}
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.SystemTemplate), nil
}

// Default returns the template flagged as default for the type, or the first one.
func (s *Service) Default(ctx context.Context, templateType string) (model.SystemTemplate, bool, error) {
	items, err := s.List(ctx, templateType)
	if err != nil {
		return model.SystemTemplate{}, false, err
	}
	for _, item := range items {
		if item.IsDefault {
			return item, true, nil
		}
	}
	if len(items) > 0 {
		return items[0], true, nil
	}
	return model.SystemTemplate{}, false, nil
}
