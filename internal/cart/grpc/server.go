package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/grpcjson"
)

const ServiceName = "storefront.cart.v1.CartService"

type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
}

type Cart struct {
	UserID    string     `json:"user_id,omitempty"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
	Loading   bool       `json:"loading"`

	// SyncError is set only when the caller asked to wait for remote sync and it failed.
	SyncError string `json:"sync_error,omitempty"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Wait      bool   `json:"wait,omitempty"`
}

type SetItemQuantityRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Wait      bool   `json:"wait,omitempty"`
}

type ProductRequest struct {
	ProductID string `json:"product_id"`
	Wait      bool   `json:"wait,omitempty"`
}

type ClearCartRequest struct {
	Wait bool `json:"wait,omitempty"`
}

type IsInCartResponse struct {
	InCart bool `json:"in_cart"`
}

// CartServiceServer is the server API of the cart service.
type CartServiceServer interface {
	GetCart(ctx context.Context, req *grpcjson.Empty) (*Cart, error)
	AddItem(ctx context.Context, req *AddItemRequest) (*Cart, error)
	RemoveItem(ctx context.Context, req *ProductRequest) (*Cart, error)
	SetItemQuantity(ctx context.Context, req *SetItemQuantityRequest) (*Cart, error)
	ClearCart(ctx context.Context, req *ClearCartRequest) (*Cart, error)
	IsInCart(ctx context.Context, req *ProductRequest) (*IsInCartResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "GetCart", func(srv any, ctx context.Context, req *grpcjson.Empty) (*Cart, error) {
			return srv.(CartServiceServer).GetCart(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "AddItem", func(srv any, ctx context.Context, req *AddItemRequest) (*Cart, error) {
			return srv.(CartServiceServer).AddItem(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "RemoveItem", func(srv any, ctx context.Context, req *ProductRequest) (*Cart, error) {
			return srv.(CartServiceServer).RemoveItem(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "SetItemQuantity", func(srv any, ctx context.Context, req *SetItemQuantityRequest) (*Cart, error) {
			return srv.(CartServiceServer).SetItemQuantity(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "ClearCart", func(srv any, ctx context.Context, req *ClearCartRequest) (*Cart, error) {
			return srv.(CartServiceServer).ClearCart(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "IsInCart", func(srv any, ctx context.Context, req *ProductRequest) (*IsInCartResponse, error) {
			return srv.(CartServiceServer).IsInCart(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/cart/v1/cart.json",
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc      *app.Service
	products app.ProductLookup
}

func NewServer(svc *app.Service, products app.ProductLookup) *Server {
	return &Server{svc: svc, products: products}
}

func (s *Server) GetCart(ctx context.Context, _ *grpcjson.Empty) (*Cart, error) {
	return s.toProto(), nil
}

func (s *Server) AddItem(ctx context.Context, req *AddItemRequest) (*Cart, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, app.ErrProductNotFound) {
			return nil, status.Errorf(codes.NotFound, "product not found: %s", req.ProductID)
		}
		return nil, status.Errorf(codes.Unavailable, "error getting product: %v", err)
	}

	return s.respond(ctx, s.svc.AddToCart(product, quantity), req.Wait), nil
}

func (s *Server) RemoveItem(ctx context.Context, req *ProductRequest) (*Cart, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	return s.respond(ctx, s.svc.RemoveFromCart(req.ProductID), req.Wait), nil
}

func (s *Server) SetItemQuantity(ctx context.Context, req *SetItemQuantityRequest) (*Cart, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}
	return s.respond(ctx, s.svc.UpdateQuantity(req.ProductID, req.Quantity), req.Wait), nil
}

func (s *Server) ClearCart(ctx context.Context, req *ClearCartRequest) (*Cart, error) {
	return s.respond(ctx, s.svc.ClearCart(), req.Wait), nil
}

func (s *Server) IsInCart(ctx context.Context, req *ProductRequest) (*IsInCartResponse, error) {
	return &IsInCartResponse{InCart: s.svc.IsInCart(req.ProductID)}, nil
}

// respond returns the cart right away unless the caller asked to wait for the
// remote sync; a sync failure is reported in the body, never as an RPC error.
func (s *Server) respond(ctx context.Context, sync *app.Sync, wait bool) *Cart {
	var syncErr string
	if wait {
		if err := sync.Wait(ctx); err != nil {
			syncErr = err.Error()
		}
	}
	out := s.toProto()
	out.SyncError = syncErr
	return out
}

func (s *Server) toProto() *Cart {
	view := s.svc.Cart()
	return &Cart{
		UserID:    s.svc.UserID(),
		Items:     toProtoItems(view.Items),
		Total:     view.Total,
		ItemCount: view.ItemCount,
		Loading:   s.svc.Loading(),
	}
}

func toProtoItems(entries []domain.Entry) []CartItem {
	items := make([]CartItem, 0, len(entries))
	for _, e := range entries {
		item := CartItem{
			ProductID: e.Product.ID,
			Name:      e.Product.Name,
			Price:     e.Product.Price,
			Quantity:  e.Quantity,
			Stock:     e.Product.Stock,
		}
		if len(e.Product.Images) > 0 {
			item.Image = e.Product.Images[0]
		}
		items = append(items, item)
	}
	return items
}

// Client is the cart service seen from another process.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	return grpcjson.Invoke[Cart](ctx, c.cc, ServiceName, "GetCart", &grpcjson.Empty{})
}

func (c *Client) AddItem(ctx context.Context, req *AddItemRequest) (*Cart, error) {
	return grpcjson.Invoke[Cart](ctx, c.cc, ServiceName, "AddItem", req)
}

func (c *Client) RemoveItem(ctx context.Context, req *ProductRequest) (*Cart, error) {
	return grpcjson.Invoke[Cart](ctx, c.cc, ServiceName, "RemoveItem", req)
}

func (c *Client) SetItemQuantity(ctx context.Context, req *SetItemQuantityRequest) (*Cart, error) {
	return grpcjson.Invoke[Cart](ctx, c.cc, ServiceName, "SetItemQuantity", req)
}

func (c *Client) ClearCart(ctx context.Context, req *ClearCartRequest) (*Cart, error) {
	return grpcjson.Invoke[Cart](ctx, c.cc, ServiceName, "ClearCart", req)
}

func (c *Client) IsInCart(ctx context.Context, req *ProductRequest) (*IsInCartResponse, error) {
	return grpcjson.Invoke[IsInCartResponse](ctx, c.cc, ServiceName, "IsInCart", req)
}
