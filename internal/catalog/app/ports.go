package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/catalog/domain"
)

type ProductRepo interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, f domain.Filters) ([]domain.Product, error)
}
