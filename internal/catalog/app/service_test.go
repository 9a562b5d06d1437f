package app

import (
	"context"
	"testing"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type fakeRepo struct {
	lastFilters domain.Filters
}

func (f *fakeRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	return domain.Product{ID: id}, nil
}

func (f *fakeRepo) List(ctx context.Context, filters domain.Filters) ([]domain.Product, error) {
	f.lastFilters = filters
	return nil, nil
}

func ptr(v float64) *float64 { return &v }

func TestGetProductValidation(t *testing.T) {
	svc := NewService(&fakeRepo{})

	t.Run("blank id -> invalid", func(t *testing.T) {
		_, err := svc.GetProduct(context.Background(), "   ")
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("id is trimmed", func(t *testing.T) {
		p, err := svc.GetProduct(context.Background(), " p1 ")
		if err != nil || p.ID != "p1" {
			t.Fatalf("got (%+v, %v)", p, err)
		}
	})
}

func TestListProductsValidation(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	t.Run("inverted price range -> invalid", func(t *testing.T) {
		_, err := svc.ListProducts(context.Background(), domain.Filters{MinPrice: ptr(10), MaxPrice: ptr(5)})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rating above five -> invalid", func(t *testing.T) {
		_, err := svc.ListProducts(context.Background(), domain.Filters{MinRating: 6})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown sort -> invalid", func(t *testing.T) {
		_, err := svc.ListProducts(context.Background(), domain.Filters{SortBy: "cheapest"})
		if err != ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("category All means any", func(t *testing.T) {
		_, err := svc.ListProducts(context.Background(), domain.Filters{Category: "All", Search: "  lamp "})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.lastFilters.Category != "" || repo.lastFilters.Search != "lamp" {
			t.Fatalf("filters not normalised: %+v", repo.lastFilters)
		}
	})
}
