package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
)

type CartServiceReader struct {
	svc *cartapp.Service
}

func NewCartServiceReader(svc *cartapp.Service) *CartServiceReader {
	return &CartServiceReader{svc: svc}
}

func (r *CartServiceReader) GetCart(ctx context.Context) ([]checkoutapp.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cart := r.svc.Cart()

	items := make([]checkoutapp.CartItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, checkoutapp.CartItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  int64(it.Quantity),
		})
	}
	return items, nil
}
