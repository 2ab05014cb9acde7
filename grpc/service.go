package palletgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/palletberry/types"
)

const serviceName = "palletberry.v1.Runtime"

// RuntimeServiceServer is the server-side interface for the runtime
// gRPC service.
type RuntimeServiceServer interface {
	Handshake(context.Context, *types.HandshakeRequest) (*types.HandshakeResponse, error)
	ExecuteBlock(context.Context, *types.RawBlock) (*ExecuteBlockResponse, error)
	Query(context.Context, *types.StateQuery) (*types.StateQueryResult, error)
}

// RegisterRuntimeServiceServer registers the service on a gRPC server.
func RegisterRuntimeServiceServer(s *grpc.Server, srv RuntimeServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerHandshake(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.HandshakeRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuntimeServiceServer).Handshake(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Handshake")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuntimeServiceServer).Handshake(ctx, req.(*types.HandshakeRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func handlerExecuteBlock(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.RawBlock)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuntimeServiceServer).ExecuteBlock(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ExecuteBlock")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuntimeServiceServer).ExecuteBlock(ctx, req.(*types.RawBlock))
	}
	return interceptor(ctx, req, info, handler)
}

func handlerQuery(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(types.StateQuery)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuntimeServiceServer).Query(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("Query")}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuntimeServiceServer).Query(ctx, req.(*types.StateQuery))
	}
	return interceptor(ctx, req, info, handler)
}

// fullMethod builds the full gRPC method path.
func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

// serviceDesc is the manual gRPC service descriptor.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RuntimeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Handshake", Handler: handlerHandshake},
		{MethodName: "ExecuteBlock", Handler: handlerExecuteBlock},
		{MethodName: "Query", Handler: handlerQuery},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "palletberry/v1/runtime.cram",
}
