package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dwikikusuma/storefront/internal/auth"
	"github.com/dwikikusuma/storefront/pkg/grpcjson"
)

const ServiceName = "storefront.auth.v1.SessionService"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SessionResponse struct {
	SignedIn bool       `json:"signed_in"`
	User     *auth.User `json:"user,omitempty"`
}

type SessionServiceServer interface {
	Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error)
	Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error)
	Logout(ctx context.Context, req *grpcjson.Empty) (*SessionResponse, error)
	Whoami(ctx context.Context, req *grpcjson.Empty) (*SessionResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		grpcjson.Unary(ServiceName, "Login", func(srv any, ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
			return srv.(SessionServiceServer).Login(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "Register", func(srv any, ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
			return srv.(SessionServiceServer).Register(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "Logout", func(srv any, ctx context.Context, req *grpcjson.Empty) (*SessionResponse, error) {
			return srv.(SessionServiceServer).Logout(ctx, req)
		}),
		grpcjson.Unary(ServiceName, "Whoami", func(srv any, ctx context.Context, req *grpcjson.Empty) (*SessionResponse, error) {
			return srv.(SessionServiceServer).Whoami(ctx, req)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/auth/v1/session.json",
}

func RegisterSessionServiceServer(s grpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	client  *auth.Client
	session *auth.Session
}

func NewServer(client *auth.Client, session *auth.Session) *Server {
	return &Server{client: client, session: session}
}

func (s *Server) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	u, err := s.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, mapErr(err)
	}
	return &SessionResponse{SignedIn: true, User: &u}, nil
}

func (s *Server) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	u, err := s.client.Register(ctx, req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		return nil, mapErr(err)
	}
	return &SessionResponse{SignedIn: true, User: &u}, nil
}

func (s *Server) Logout(ctx context.Context, _ *grpcjson.Empty) (*SessionResponse, error) {
	s.client.Logout()
	return &SessionResponse{}, nil
}

func (s *Server) Whoami(ctx context.Context, _ *grpcjson.Empty) (*SessionResponse, error) {
	u, ok := s.session.User()
	if !ok {
		return &SessionResponse{}, nil
	}
	return &SessionResponse{SignedIn: true, User: &u}, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNotSignedIn):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Errorf(codes.Unavailable, "auth unavailable: %v", err)
	}
}

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	return grpcjson.Invoke[SessionResponse](ctx, c.cc, ServiceName, "Login", req)
}

func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*SessionResponse, error) {
	return grpcjson.Invoke[SessionResponse](ctx, c.cc, ServiceName, "Register", req)
}

func (c *Client) Logout(ctx context.Context) (*SessionResponse, error) {
	return grpcjson.Invoke[SessionResponse](ctx, c.cc, ServiceName, "Logout", &grpcjson.Empty{})
}

func (c *Client) Whoami(ctx context.Context) (*SessionResponse, error) {
	return grpcjson.Invoke[SessionResponse](ctx, c.cc, ServiceName, "Whoami", &grpcjson.Empty{})
}
