package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/pkg/grpcjson"
)

const ServiceName = "storefront.checkout.v1.CheckoutService"

type QuoteResponse struct {
	domain.Quote
}

type CheckoutServiceServer interface {
	Quote(ctx context.Context, req *grpcjson.Empty) (*QuoteResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "Quote", func(srv any, ctx context.Context, req *grpcjson.Empty) (*QuoteResponse, error) {
			return srv.(CheckoutServiceServer).Quote(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/checkout/v1/checkout.json",
}

func RegisterCheckoutServiceServer(s grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Quote(ctx context.Context, _ *grpcjson.Empty) (*QuoteResponse, error) {
	q, err := s.svc.Quote(ctx)
	if err != nil {
		if errors.Is(err, app.ErrEmptyCart) {
			return nil, status.Error(codes.NotFound, "cart is empty")
		}
		return nil, status.Errorf(codes.Internal, "quote failed: %v", err)
	}
	return &QuoteResponse{Quote: q}, nil
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Quote(ctx context.Context) (*QuoteResponse, error) {
	return grpcjson.Invoke[QuoteResponse](ctx, c.cc, ServiceName, "Quote", &grpcjson.Empty{})
}
