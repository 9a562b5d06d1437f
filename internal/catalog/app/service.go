package app

import (
	"context"
	"errors"
	"strings"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f domain.Filters) ([]domain.Product, error) {
	f.Category = strings.TrimSpace(f.Category)
	if strings.EqualFold(f.Category, "all") {
		f.Category = ""
	}
	f.Search = strings.TrimSpace(f.Search)

	if f.MinRating < 0 || f.MinRating > 5 {
		return nil, ErrInvalidInput
	}
	if f.MinPrice != nil && *f.MinPrice < 0 {
		return nil, ErrInvalidInput
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, ErrInvalidInput
	}

	switch f.SortBy {
	case domain.SortNone, domain.SortPriceAsc, domain.SortPriceDesc, domain.SortRating, domain.SortNewest:
	default:
		return nil, ErrInvalidInput
	}

	return s.repo.List(ctx, f)
}
