// Package cashregisterv1 declares the CashRegister and Token gRPC services.
//
// Messages are plain Go structs carried by a JSON codec registered under the
// "json" content-subtype; clients built here select it on every call.
package cashregisterv1

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype used by both services.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

func (jsonCodec) Unmarshal(data []byte, value any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("decode %T: %w", value, err)
	}
	return nil
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CallOptions prepends the JSON content-subtype to opts.
func CallOptions(opts ...grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func invoke[Response any](ctx context.Context, cc grpc.ClientConnInterface, method string, request any, opts []grpc.CallOption) (*Response, error) {
	response := new(Response)
	if err := cc.Invoke(ctx, method, request, response, CallOptions(opts...)...); err != nil {
		return nil, err
	}
	return response, nil
}

// methodHandler matches the handler field of grpc.MethodDesc.
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

func unaryHandler[Server any, Request any, Response any](fullMethod string, call func(Server, context.Context, *Request) (*Response, error)) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		request := new(Request)
		if err := dec(request); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Server), ctx, request)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Server), ctx, req.(*Request))
		}
		return interceptor(ctx, request, info, handler)
	}
}
