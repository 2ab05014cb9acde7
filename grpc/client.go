package palletgrpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/server"
	"github.com/blockberries/palletberry/types"
)

// Compile-time interface check.
var _ palletberry.Connection = (*Client)(nil)

// Client implements palletberry.Connection for a remote runtime over
// gRPC using cramberry serialization. It mirrors the lifecycle guard
// so misuse is caught before it reaches the wire.
type Client struct {
	cc    *grpc.ClientConn
	guard *server.LifecycleGuard
}

// Dial connects to a remote runtime.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("palletberry client: dial %s: %w", addr, err)
	}
	return &Client{
		cc:    cc,
		guard: server.NewLifecycleGuard(),
	}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// --- Lifecycle ---

func (c *Client) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	c.guard.AcquireHandshake()

	resp := new(types.HandshakeResponse)
	err := c.cc.Invoke(ctx, fullMethod("Handshake"), &req, resp)
	if err != nil {
		c.guard.FailHandshake()
		return types.HandshakeResponse{}, err
	}

	c.guard.CompleteHandshake()
	return *resp, nil
}

func (c *Client) ExecuteBlock(ctx context.Context, block types.RawBlock) (types.BlockOutcome, error) {
	c.guard.AcquireExecute()
	defer c.guard.ReleaseExecute()

	resp := new(ExecuteBlockResponse)
	if err := c.cc.Invoke(ctx, fullMethod("ExecuteBlock"), &block, resp); err != nil {
		return types.BlockOutcome{}, err
	}

	switch {
	case resp.Rejection != nil:
		return types.BlockOutcome{}, resp.Rejection.Err()
	case resp.Outcome != nil:
		return *resp.Outcome, nil
	default:
		return types.BlockOutcome{}, errors.New("palletberry client: empty ExecuteBlock response")
	}
}

func (c *Client) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	c.guard.CheckConcurrent()

	resp := new(types.StateQueryResult)
	if err := c.cc.Invoke(ctx, fullMethod("Query"), &req, resp); err != nil {
		return types.StateQueryResult{}, err
	}
	return *resp, nil
}
