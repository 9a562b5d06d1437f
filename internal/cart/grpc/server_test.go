package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

type products map[string]domain.Product

func (p products) GetProduct(_ context.Context, id string) (domain.Product, error) {
	if prod, ok := p[id]; ok {
		return prod, nil
	}
	return domain.Product{}, app.ErrProductNotFound
}

// downStore fails every write and returns an empty remote cart.
type downStore struct{}

var errDown = errors.New("record service down")

func (downStore) ListRecords(context.Context, string) ([]domain.Record, error) { return nil, nil }
func (downStore) CreateRecord(context.Context, string, domain.Product, int) (domain.Record, error) {
	return domain.Record{}, errDown
}
func (downStore) UpdateRecordQuantity(context.Context, string, int) (domain.Record, error) {
	return domain.Record{}, errDown
}
func (downStore) DeleteRecord(context.Context, string) error     { return errDown }
func (downStore) DeleteAllRecords(context.Context, string) error { return errDown }

func newTestClient(t *testing.T, svc *app.Service) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCartServiceServer(srv, NewServer(svc, products{
		"p1": {ID: "p1", Name: "Lamp", Price: 20, Stock: 5, Images: []string{"lamp.jpg"}},
		"p2": {ID: "p2", Name: "Mug", Price: 5, Stock: 10},
	}))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewClient(conn)
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestCartService_AnonymousFlow(t *testing.T) {
	svc := app.NewService(downStore{}, app.Options{})
	client := newTestClient(t, svc)
	ctx := testCtx(t)

	cart, err := client.AddItem(ctx, &AddItemRequest{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 40.0, cart.Total)
	assert.Equal(t, 2, cart.ItemCount)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "lamp.jpg", cart.Items[0].Image)

	cart, err = client.AddItem(ctx, &AddItemRequest{ProductID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, 45.0, cart.Total)
	assert.Equal(t, 3, cart.ItemCount)

	in, err := client.IsInCart(ctx, &ProductRequest{ProductID: "p2"})
	require.NoError(t, err)
	assert.True(t, in.InCart)

	cart, err = client.SetItemQuantity(ctx, &SetItemQuantityRequest{ProductID: "p1", Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, cart.Total)

	cart, err = client.RemoveItem(ctx, &ProductRequest{ProductID: "p2"})
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = client.GetCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, cart.ItemCount)
	assert.Equal(t, "", cart.UserID)
}

func TestCartService_Errors(t *testing.T) {
	svc := app.NewService(downStore{}, app.Options{})
	client := newTestClient(t, svc)
	ctx := testCtx(t)

	_, err := client.AddItem(ctx, &AddItemRequest{ProductID: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.AddItem(ctx, &AddItemRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.RemoveItem(ctx, &ProductRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCartService_WaitReportsSyncFailure(t *testing.T) {
	svc := app.NewService(downStore{}, app.Options{})
	ctx := testCtx(t)
	require.NoError(t, svc.LoadForUser(ctx, "u1"))
	client := newTestClient(t, svc)

	cart, err := client.AddItem(ctx, &AddItemRequest{ProductID: "p1", Wait: true})
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.Equal(t, 1, cart.ItemCount)
	assert.Contains(t, cart.SyncError, errDown.Error())

	// without wait the failure stays in the background
	cart, err = client.AddItem(ctx, &AddItemRequest{ProductID: "p2"})
	require.NoError(t, err)
	assert.Empty(t, cart.SyncError)
	require.NoError(t, svc.Flush(ctx))
}
