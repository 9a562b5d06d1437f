package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/storefront/internal/catalog/app"
	"github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/pkg/grpcjson"
)

const ServiceName = "storefront.catalog.v1.CatalogService"

type GetProductRequest struct {
	ID string `json:"id"`
}

type GetProductResponse struct {
	Product domain.Product `json:"product"`
}

type ListProductsRequest struct {
	Category  string   `json:"category,omitempty"`
	MinPrice  *float64 `json:"min_price,omitempty"`
	MaxPrice  *float64 `json:"max_price,omitempty"`
	MinRating float64  `json:"min_rating,omitempty"`
	Search    string   `json:"search,omitempty"`
	Featured  bool     `json:"featured,omitempty"`
	SortBy    string   `json:"sort_by,omitempty"`
}

type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type CatalogServiceServer interface {
	GetProduct(ctx context.Context, req *GetProductRequest) (*GetProductResponse, error)
	ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "GetProduct", func(srv any, ctx context.Context, req *GetProductRequest) (*GetProductResponse, error) {
			return srv.(CatalogServiceServer).GetProduct(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "ListProducts", func(srv any, ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
			return srv.(CatalogServiceServer).ListProducts(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/catalog/v1/catalog.json",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) GetProduct(ctx context.Context, req *GetProductRequest) (*GetProductResponse, error) {
	p, err := s.svc.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &GetProductResponse{Product: p}, nil
}

func (s *Server) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	products, err := s.svc.ListProducts(ctx, domain.Filters{
		Category:  req.Category,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		MinRating: req.MinRating,
		Search:    req.Search,
		Featured:  req.Featured,
		SortBy:    domain.SortOrder(req.SortBy),
	})
	if err != nil {
		return nil, mapErr(err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return &ListProductsResponse{Products: products}, nil
}

func mapErr(err error) error {
	if errors.Is(err, app.ErrInvalidInput) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if errors.Is(err, app.ErrNotFound) {
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Unavailable, "catalog unavailable")
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetProduct(ctx context.Context, req *GetProductRequest) (*GetProductResponse, error) {
	return grpcjson.Invoke[GetProductResponse](ctx, c.cc, ServiceName, "GetProduct", req)
}

func (c *Client) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	return grpcjson.Invoke[ListProductsResponse](ctx, c.cc, ServiceName, "ListProducts", req)
}
