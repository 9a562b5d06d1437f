package grpcjson

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

type echoReq struct {
	Text string `json:"text"`
}

type echoResp struct {
	Text string `json:"text"`
}

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(Name)
	require.NotNil(t, c)

	raw, err := c.Marshal(&echoReq{Text: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, string(raw))

	var out echoReq
	require.NoError(t, c.Unmarshal(raw, &out))
	assert.Equal(t, "hi", out.Text)
}

func TestUnary(t *testing.T) {
	desc := Unary("test.Echo", "Say", func(srv any, ctx context.Context, req *echoReq) (*echoResp, error) {
		return &echoResp{Text: srv.(string) + req.Text}, nil
	})
	assert.Equal(t, "Say", desc.MethodName)

	dec := func(v any) error {
		v.(*echoReq).Text = "world"
		return nil
	}

	t.Run("direct", func(t *testing.T) {
		out, err := desc.Handler("hello ", context.Background(), dec, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello world", out.(*echoResp).Text)
	})

	t.Run("through interceptor", func(t *testing.T) {
		var seen string
		interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			seen = info.FullMethod
			return handler(ctx, req)
		}
		out, err := desc.Handler("hello ", context.Background(), dec, interceptor)
		require.NoError(t, err)
		assert.Equal(t, "/test.Echo/Say", seen)
		assert.Equal(t, "hello world", out.(*echoResp).Text)
	})

	t.Run("decode error", func(t *testing.T) {
		boom := errors.New("bad frame")
		_, err := desc.Handler("x", context.Background(), func(any) error { return boom }, nil)
		assert.ErrorIs(t, err, boom)
	})
}
