package adapter

import (
	"context"
	"errors"
	"fmt"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
)

// CatalogLookup snapshots catalog products for the cart.
type CatalogLookup struct {
	svc *catalogapp.Service
}

func NewCatalogLookup(svc *catalogapp.Service) *CatalogLookup {
	return &CatalogLookup{svc: svc}
}

func (l *CatalogLookup) GetProduct(ctx context.Context, productID string) (cartdomain.Product, error) {
	p, err := l.svc.GetProduct(ctx, productID)
	if errors.Is(err, catalogapp.ErrNotFound) || errors.Is(err, catalogapp.ErrInvalidInput) {
		return cartdomain.Product{}, fmt.Errorf("%w: %q", cartapp.ErrProductNotFound, productID)
	}
	if err != nil {
		return cartdomain.Product{}, err
	}

	return cartdomain.Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Images:        append([]string(nil), p.Images...),
		Category:      p.Category,
		Tags:          append([]string(nil), p.Tags...),
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Stock:         p.Stock,
		Seller:        p.Seller,
		SellerID:      p.SellerID,
		Featured:      p.Featured,
		Badge:         p.Badge,
	}, nil
}
