// Package palletberry defines the contracts of a modular
// state-transition runtime: independent pallets composed into one
// runtime that executes ordered blocks of extrinsics.
//
// Pallets are generic over the runtime's primitive types (bounded by
// [Unsigned] and cmp.Ordered) and expose their callable functions
// through a [Dispatcher]. The embedding process drives a runtime
// exclusively through [Lifecycle].
package palletberry

import (
	"context"

	"github.com/blockberries/palletberry/types"
)

// Unsigned is the bound shared by every counter-like primitive a
// runtime configures: block numbers, nonces and balances.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Dispatcher routes a call on behalf of caller to exactly one
// state-transition function and returns its result unchanged.
//
// Dispatch performs no mutation of its own; all side effects are
// those of the invoked function.
type Dispatcher[A any, C any] interface {
	Dispatch(caller A, call C) error
}

// Lifecycle is the interface an embedding process uses to drive a
// runtime.
//
// The engine guarantees the following call order:
//  1. Handshake is called exactly once, before anything else.
//  2. ExecuteBlock is called sequentially, one block at a time.
//  3. Query may be called concurrently at any time after Handshake.
type Lifecycle interface {
	// Handshake is called once on startup. If the request carries a
	// genesis document it is applied before the response is built.
	//
	// The application reports its current block number and state hash.
	Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error)

	// ExecuteBlock validates the header and applies every extrinsic in
	// order.
	//
	// The returned error only reflects block-level validity (header
	// mismatch, undecodable extrinsic). Per-extrinsic failures are
	// reported in BlockOutcome.Outcomes and never fail the block.
	ExecuteBlock(ctx context.Context, block types.RawBlock) (types.BlockOutcome, error)

	// Query reads pallet state through the pallets' read accessors.
	//
	// This method MUST be safe for concurrent use.
	Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error)
}

// Connection represents a transport-agnostic connection to a runtime.
// Both gRPC clients and in-process adapters implement this.
type Connection interface {
	Lifecycle

	// Close terminates the connection.
	Close() error
}
