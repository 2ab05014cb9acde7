// Package local provides an in-process runtime connection.
//
// For runtimes compiled into the same binary as the engine, this
// adapter wraps the runtime with lifecycle enforcement and no
// serialization beyond the call codec.
package local

import (
	"context"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/server"
	"github.com/blockberries/palletberry/types"
)

// Compile-time interface check.
var _ palletberry.Connection = (*Connection)(nil)

// Connection wraps a local Lifecycle implementation with lifecycle
// enforcement.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection wrapping the given
// runtime. Options are passed through to the server.
func NewConnection(app palletberry.Lifecycle, opts ...server.Option) *Connection {
	return &Connection{srv: server.New(app, opts...)}
}

func (c *Connection) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	return c.srv.Handshake(ctx, req)
}

func (c *Connection) ExecuteBlock(ctx context.Context, block types.RawBlock) (types.BlockOutcome, error) {
	return c.srv.ExecuteBlock(ctx, block)
}

func (c *Connection) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	return c.srv.Query(ctx, req)
}

func (c *Connection) Close() error { return nil }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
