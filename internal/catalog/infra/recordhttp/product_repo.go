package recordhttp

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

type ProductRepo struct {
	c *httpx.Client
}

func NewProductRepo(c *httpx.Client) *ProductRepo {
	return &ProductRepo{c: c}
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.c.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &p)
	if httpx.StatusCode(err) == http.StatusNotFound {
		return domain.Product{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.Filters) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.c.Do(ctx, http.MethodGet, "/products", listQuery(f), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func listQuery(f domain.Filters) url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.MinRating > 0 {
		q.Set("rating_gte", formatFloat(f.MinRating))
	}
	if f.MinPrice != nil {
		q.Set("price_gte", formatFloat(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		q.Set("price_lte", formatFloat(*f.MaxPrice))
	}
	if f.Featured {
		q.Set("featured", "true")
	}
	if f.Search != "" {
		q.Set("q", f.Search)
	}

	switch f.SortBy {
	case domain.SortPriceAsc:
		q.Set("_sort", "price")
		q.Set("_order", "asc")
	case domain.SortPriceDesc:
		q.Set("_sort", "price")
		q.Set("_order", "desc")
	case domain.SortRating:
		q.Set("_sort", "rating")
		q.Set("_order", "desc")
	}
	return q
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
