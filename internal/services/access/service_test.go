package access

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ludora/storefront/internal/domain/enums"
	"github.com/ludora/storefront/internal/domain/model"
	"github.com/ludora/storefront/internal/repo/marketapi"
)

type productSourceStub struct {
	products map[string]model.Product
	err      error
	calls    int
}

func (s *productSourceStub) GetProduct(_ context.Context, productID string) (model.Product, error) {
	s.calls++
	if s.err != nil {
		return model.Product{}, s.err
	}
	p, ok := s.products[productID]
	if !ok {
		return model.Product{}, marketapi.ErrProductNotFound
	}
	return p, nil
}

func TestResolveClassifiesFetchedProduct(t *testing.T) {
	src := &productSourceStub{products: map[string]model.Product{
		"p1": {
			ProductType: enums.ProductTypeCourse,
			Price:       json.RawMessage(`"120"`),
			Access:      &model.Access{ShowPurchaseButton: true},
		},
	}}
	svc := NewService(src)

	res, product, err := svc.Resolve(context.Background(), " p1 ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Kind != enums.ResolutionPurchasable || res.IsFree {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.ProductID != "p1" || product.ID != "p1" {
		t.Fatalf("expected product id to default to the requested id: %+v", res)
	}
}

func TestResolveMapsNotFound(t *testing.T) {
	svc := NewService(&productSourceStub{})

	_, _, err := svc.Resolve(context.Background(), "missing")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestResolveRejectsEmptyID(t *testing.T) {
	src := &productSourceStub{}
	svc := NewService(src)

	if _, _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("empty id must not reach the marketplace")
	}
}

func TestResolveWrapsUpstreamErrors(t *testing.T) {
	upstream := &marketapi.RequestError{Op: "get product", StatusCode: 503, Retryable: true}
	svc := NewService(&productSourceStub{err: upstream})

	_, _, err := svc.Resolve(context.Background(), "p1")
	var reqErr *marketapi.RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != 503 {
		t.Fatalf("expected wrapped request error, got %v", err)
	}
}
