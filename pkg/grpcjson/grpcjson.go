// Package grpcjson carries plain Go structs over gRPC with a JSON codec, so
// services can be declared with hand-written descriptors instead of protoc output.
package grpcjson

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// Name is the content subtype clients must request ("application/grpc+json").
const Name = "json"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (codec) Name() string                       { return Name }

func init() {
	encoding.RegisterCodec(codec{})
}

// Empty is the request or response of calls that carry no data.
type Empty struct{}

// Unary builds the method descriptor of a unary RPC served by call.
func Unary[Req, Resp any](service, method string, call func(srv any, ctx context.Context, req *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv, ctx, req.(*Req))
			})
		},
	}
}

// Invoke calls a unary RPC with the JSON codec.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, method string, req any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+service+"/"+method, req, out, grpc.CallContentSubtype(Name)); err != nil {
		return nil, err
	}
	return out, nil
}
