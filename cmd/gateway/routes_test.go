package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	cartgrpc "github.com/dwikikusuma/storefront/internal/cart/grpc"
	"github.com/dwikikusuma/storefront/pkg/grpcjson"
)

// fakeCart keeps quantities per product and ignores everything else.
type fakeCart struct {
	items map[string]int
}

func (f *fakeCart) view() *cartgrpc.Cart {
	out := &cartgrpc.Cart{Items: []cartgrpc.CartItem{}}
	for id, q := range f.items {
		out.Items = append(out.Items, cartgrpc.CartItem{ProductID: id, Quantity: q})
		out.ItemCount += q
	}
	return out
}

func (f *fakeCart) GetCart(context.Context, *grpcjson.Empty) (*cartgrpc.Cart, error) {
	return f.view(), nil
}

func (f *fakeCart) AddItem(_ context.Context, req *cartgrpc.AddItemRequest) (*cartgrpc.Cart, error) {
	if req.ProductID == "missing" {
		return nil, status.Error(codes.NotFound, "product not found: missing")
	}
	f.items[req.ProductID] += req.Quantity
	out := f.view()
	if req.Wait {
		out.SyncError = "waited"
	}
	return out, nil
}

func (f *fakeCart) RemoveItem(_ context.Context, req *cartgrpc.ProductRequest) (*cartgrpc.Cart, error) {
	delete(f.items, req.ProductID)
	return f.view(), nil
}

func (f *fakeCart) SetItemQuantity(_ context.Context, req *cartgrpc.SetItemQuantityRequest) (*cartgrpc.Cart, error) {
	f.items[req.ProductID] = req.Quantity
	return f.view(), nil
}

func (f *fakeCart) ClearCart(context.Context, *cartgrpc.ClearCartRequest) (*cartgrpc.Cart, error) {
	f.items = map[string]int{}
	return f.view(), nil
}

func (f *fakeCart) IsInCart(_ context.Context, req *cartgrpc.ProductRequest) (*cartgrpc.IsInCartResponse, error) {
	_, ok := f.items[req.ProductID]
	return &cartgrpc.IsInCartResponse{InCart: ok}, nil
}

func newTestGateway(t *testing.T) *httptest.Server {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	cartgrpc.RegisterCartServiceServer(srv, &fakeCart{items: map[string]int{}})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ts := httptest.NewServer(newRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), conn))
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if resp.ContentLength != 0 {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func TestGateway_CartRoutes(t *testing.T) {
	ts := newTestGateway(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/v1/cart/items", `{"product_id":"p1","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["item_count"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, body = do(t, http.MethodPost, ts.URL+"/v1/cart/items?wait=true", `{"product_id":"p2","quantity":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "waited", body["sync_error"])

	resp, body = do(t, http.MethodPatch, ts.URL+"/v1/cart/items/p1", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 6, body["item_count"])

	_, body = do(t, http.MethodGet, ts.URL+"/v1/cart/items/p2", "")
	assert.Equal(t, true, body["in_cart"])

	_, body = do(t, http.MethodDelete, ts.URL+"/v1/cart/items/p2", "")
	assert.EqualValues(t, 5, body["item_count"])

	_, body = do(t, http.MethodDelete, ts.URL+"/v1/cart", "")
	assert.EqualValues(t, 0, body["item_count"])
}

func TestGateway_Errors(t *testing.T) {
	ts := newTestGateway(t)

	t.Run("grpc NotFound -> 404", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/cart/items", strings.NewReader(`{"product_id":"missing"}`))
		req.Header.Set("X-Request-Id", "req-1")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body errorBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", body.Code)
		assert.Equal(t, "req-1", body.Request)
	})

	t.Run("bad json -> 400", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, ts.URL+"/v1/cart/items", `{`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ARGUMENT", body["code"])
	})

	t.Run("unregistered service -> 500", func(t *testing.T) {
		resp, body := do(t, http.MethodGet, ts.URL+"/v1/checkout/quote", "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL", body["code"])
	})
}
