package app_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/recordhttp"
	"github.com/dwikikusuma/storefront/internal/records/memserver"
	"github.com/dwikikusuma/storefront/pkg/httpx"
)

func newTestService(t *testing.T) (*app.Service, *memserver.Server) {
	t.Helper()
	records := memserver.New()
	ts := httptest.NewServer(records.Handler())
	t.Cleanup(ts.Close)

	repo := recordhttp.NewCartRepo(httpx.NewClient(ts.URL, 5*time.Second), 4)
	return app.NewService(repo, app.Options{RemoteTimeout: 5 * time.Second}), records
}

func flush(t *testing.T, svc *app.Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
}

func TestCart_ConcurrentAdds_SingleRemoteRecord(t *testing.T) {
	svc, records := newTestService(t)

	userID := uuid.NewString()
	product := domain.Product{ID: uuid.NewString(), Name: "Lamp", Price: 12.5}

	if err := svc.LoadForUser(context.Background(), userID); err != nil {
		t.Fatalf("LoadForUser failed: %v", err)
	}

	const N = 100
	var g errgroup.Group
	for i := 0; i < N; i++ {
		g.Go(func() error {
			svc.AddToCart(product, 1)
			return nil
		})
	}
	_ = g.Wait()
	flush(t, svc)

	got := records.CartItems(userID)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 remote record, got %d: %+v", len(got), got)
	}
	if got[0].Quantity != N {
		t.Fatalf("expected quantity=%d, got=%d", N, got[0].Quantity)
	}
	if view := svc.Cart(); view.ItemCount != N || view.Total != 12.5*N {
		t.Fatalf("unexpected local view: %+v", view)
	}
}

func TestCart_ConcurrentMixedMutations_Converge(t *testing.T) {
	svc, records := newTestService(t)
	userID := uuid.NewString()

	if err := svc.LoadForUser(context.Background(), userID); err != nil {
		t.Fatalf("LoadForUser failed: %v", err)
	}

	products := make([]domain.Product, 5)
	for i := range products {
		products[i] = domain.Product{ID: uuid.NewString(), Price: 1}
	}

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		p := products[i%len(products)]
		g.Go(func() error {
			svc.AddToCart(p, 2)
			return nil
		})
	}
	_ = g.Wait()

	svc.RemoveFromCart(products[0].ID)
	svc.UpdateQuantity(products[1].ID, 3)
	flush(t, svc)

	want := map[string]int{}
	for _, e := range svc.Cart().Items {
		want[e.Product.ID] = e.Quantity
	}
	got := map[string]int{}
	for _, r := range records.CartItems(userID) {
		got[r.ProductID] += r.Quantity
	}

	if len(got) != len(want) {
		t.Fatalf("remote %v does not match local %v", got, want)
	}
	for id, q := range want {
		if got[id] != q {
			t.Fatalf("product %s: remote=%d local=%d", id, got[id], q)
		}
	}
	if want[products[1].ID] != 3 || want[products[2].ID] != 20 {
		t.Fatalf("unexpected local quantities: %v", want)
	}
}
