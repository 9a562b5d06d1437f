package app

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"golang.org/x/sync/errgroup"
)

type CartReader interface {
	GetCart(ctx context.Context) ([]CartItem, error)
}

// CartItem is a cart line as the cart holds it, with its snapshot price.
type CartItem struct {
	ProductID string
	Name      string
	Price     float64
	Quantity  int64
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type Product struct {
	ID    string
	Name  string
	Price float64
	Stock int64
}

type Service struct {
	Cart    CartReader
	Catalog CatalogReader

	currency      string
	maxConcurrent int
}

func NewService(cart CartReader, catalog CatalogReader, currency string, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if currency == "" {
		currency = "USD"
	}

	return &Service{
		Cart:          cart,
		Catalog:       catalog,
		currency:      currency,
		maxConcurrent: maxConcurrent,
	}
}

var ErrEmptyCart = errors.New("cart is empty")

// Quote prices the cart against the live catalog. The cart keeps its snapshot
// prices; the quote shows where they drifted and where stock ran short.
func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	items, err := s.Cart.GetCart(ctx)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		idx := idx
		g.Go(func() error {
			it := items[idx]
			if it.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", it.Quantity)
			}

			product, err := s.Catalog.GetProduct(ctx, it.ProductID)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", it.ProductID, err)
			}

			unit := toMinor(product.Price)
			cartUnit := toMinor(it.Price)
			lines[idx] = domain.QuoteLine{
				ProductID:    product.ID,
				Name:         product.Name,
				Quantity:     it.Quantity,
				UnitPrice:    s.money(unit),
				LineTotal:    s.money(unit * it.Quantity),
				CartPrice:    s.money(cartUnit),
				PriceChanged: unit != cartUnit,
				Available:    product.Stock,
				OutOfStock:   product.Stock < it.Quantity,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Quote{}, err
	}

	var total, cartTotal int64
	for _, line := range lines {
		total += line.LineTotal.Amount
		cartTotal += line.CartPrice.Amount * line.Quantity
	}

	return domain.Quote{
		Lines:     lines,
		Total:     s.money(total),
		CartTotal: s.money(cartTotal),
	}, nil
}

func (s *Service) money(amount int64) domain.Money {
	return domain.Money{Currency: s.currency, Amount: amount}
}

func toMinor(price float64) int64 {
	return int64(math.Round(price * 100))
}
