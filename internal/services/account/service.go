package account

import (
	"context"
	"errors"
	"strings"

	"github.com/ludora/storefront/internal/repo/marketapi"
	authsvc "github.com/ludora/storefront/internal/services/auth"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("account dependencies are not configured")
)

const maxConsentFieldLen = 64

type ConsentMarker interface {
	MarkConsent(ctx context.Context, in marketapi.ConsentRequest) error
}

type Service struct {
	consent ConsentMarker
}

func NewService(consent ConsentMarker) *Service {
	return &Service{consent: consent}
}

func (s *Service) MarkConsent(ctx context.Context, consentType, version string) error {
	if _, err := authsvc.RequireIdentity(ctx); err != nil {
		return err
	}
	if s.consent == nil {
		return ErrDependenciesNil
	}
	consentType = strings.TrimSpace(consentType)
	version = strings.TrimSpace(version)
	if len(consentType) > maxConsentFieldLen || len(version) > maxConsentFieldLen {
		return ErrValidation
	}
	return s.consent.MarkConsent(ctx, marketapi.ConsentRequest{ConsentType: consentType, Version: version})
}
