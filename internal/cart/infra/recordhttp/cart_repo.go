package recordhttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

const cartItemsPath = "/cartItems"

// CartRepo stores cart records in the remote record service.
type CartRepo struct {
	c              *httpx.Client
	maxConcurrency int
	now            func() time.Time
}

func NewCartRepo(c *httpx.Client, maxConcurrency int) *CartRepo {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &CartRepo{
		c:              c,
		maxConcurrency: maxConcurrency,
		now:            time.Now,
	}
}

var _ app.RecordStore = (*CartRepo)(nil)

func (r *CartRepo) ListRecords(ctx context.Context, userID string) ([]domain.Record, error) {
	var records []domain.Record
	err := r.c.Do(ctx, http.MethodGet, cartItemsPath, url.Values{"userId": {userID}}, nil, &records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *CartRepo) CreateRecord(ctx context.Context, userID string, product domain.Product, quantity int) (domain.Record, error) {
	in := domain.Record{
		ID:        fmt.Sprintf("cart_%s_%s_%d", userID, product.ID, r.now().UnixMilli()),
		UserID:    userID,
		ProductID: product.ID,
		Product:   product,
		Quantity:  quantity,
	}

	var out domain.Record
	if err := r.c.Do(ctx, http.MethodPost, cartItemsPath, nil, in, &out); err != nil {
		return domain.Record{}, err
	}
	if out.ID == "" {
		out.ID = in.ID
	}
	return out, nil
}

func (r *CartRepo) UpdateRecordQuantity(ctx context.Context, recordID string, quantity int) (domain.Record, error) {
	body := map[string]int{"quantity": quantity}

	var out domain.Record
	err := r.c.Do(ctx, http.MethodPatch, recordPath(recordID), nil, body, &out)
	if err != nil {
		return domain.Record{}, mapNotFound(err)
	}
	return out, nil
}

func (r *CartRepo) DeleteRecord(ctx context.Context, recordID string) error {
	return mapNotFound(r.c.Do(ctx, http.MethodDelete, recordPath(recordID), nil, nil, nil))
}

// DeleteAllRecords fans out one delete per record. Records already gone count as deleted.
func (r *CartRepo) DeleteAllRecords(ctx context.Context, userID string) error {
	records, err := r.ListRecords(ctx, userID)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			err := r.DeleteRecord(ctx, rec.ID)
			if err != nil && !errors.Is(err, app.ErrRecordNotFound) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func recordPath(recordID string) string {
	return cartItemsPath + "/" + url.PathEscape(recordID)
}

func mapNotFound(err error) error {
	if err != nil && httpx.StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %v", app.ErrRecordNotFound, err)
	}
	return err
}
