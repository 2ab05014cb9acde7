package palletgrpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/server"
	"github.com/blockberries/palletberry/types"
)

// Compile-time interface check.
var _ RuntimeServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a runtime as a gRPC service. Types are
// serialized directly via cramberry.
type GRPCServer struct {
	srv    *server.Server
	logger *logging.Logger
}

// NewGRPCServer creates a gRPC server wrapping the given runtime.
// Options are passed through to the lifecycle server.
func NewGRPCServer(app palletberry.Lifecycle, opts ...server.Option) *GRPCServer {
	return NewGRPCServerFrom(server.New(app, opts...), logging.NewNopLogger())
}

// NewGRPCServerFrom exposes an existing lifecycle server.
func NewGRPCServerFrom(srv *server.Server, logger *logging.Logger) *GRPCServer {
	return &GRPCServer{srv: srv, logger: logger.WithComponent("grpc")}
}

// Register adds the runtime service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterRuntimeServiceServer(gs, s)
}

// NewServer builds a grpc.Server with request logging and the runtime
// service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(s.logger)))
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs
}

// Serve starts a gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	return s.NewServer(opts...).Serve(lis)
}

// Server returns the underlying server for advanced use.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

// --- Lifecycle RPCs ---

func (s *GRPCServer) Handshake(ctx context.Context, req *types.HandshakeRequest) (*types.HandshakeResponse, error) {
	resp, err := s.srv.Handshake(ctx, *req)
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	return &resp, nil
}

func (s *GRPCServer) ExecuteBlock(ctx context.Context, block *types.RawBlock) (*ExecuteBlockResponse, error) {
	outcome, err := s.srv.ExecuteBlock(ctx, *block)
	if err != nil {
		return &ExecuteBlockResponse{Rejection: newRejection(err)}, nil
	}
	return &ExecuteBlockResponse{Outcome: &outcome}, nil
}

func (s *GRPCServer) Query(ctx context.Context, req *types.StateQuery) (*types.StateQueryResult, error) {
	result, err := s.srv.Query(ctx, *req)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &result, nil
}

// LoggingInterceptor logs every unary call at debug level, and failed
// calls at warn.
func LoggingInterceptor(logger *logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("rpc failed",
				"method", info.FullMethod,
				logging.Duration(time.Since(start)),
				logging.Error(err),
			)
			return resp, err
		}
		logger.Debug("rpc",
			"method", info.FullMethod,
			logging.Duration(time.Since(start)),
		)
		return resp, nil
	}
}
