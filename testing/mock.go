// Package pallettest provides test utilities for runtime development,
// including a configurable mock, a test harness, and a lifecycle
// compliance suite.
package pallettest

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/types"
)

// Compile-time interface check.
var _ palletberry.Lifecycle = (*MockApp)(nil)

// MockApp is a configurable mock runtime for engine testing. All
// methods are configurable via function fields. Unconfigured methods
// behave like a runtime with no pallets: blocks must arrive in order,
// every extrinsic succeeds, and the state hash depends only on the
// block number.
type MockApp struct {
	mu          sync.Mutex
	blockNumber types.BlockNumber

	// Configurable handlers. If nil, defaults are used.
	HandshakeFn    func(context.Context, types.HandshakeRequest) (types.HandshakeResponse, error)
	ExecuteBlockFn func(context.Context, types.RawBlock) (types.BlockOutcome, error)
	QueryFn        func(context.Context, types.StateQuery) (types.StateQueryResult, error)

	// Call counters (atomic for concurrent access).
	HandshakeCalls    atomic.Int64
	ExecuteBlockCalls atomic.Int64
	QueryCalls        atomic.Int64
}

func (m *MockApp) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	m.HandshakeCalls.Add(1)
	if m.HandshakeFn != nil {
		return m.HandshakeFn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.HandshakeResponse{
		BlockNumber: m.blockNumber,
		StateHash:   mockHash(m.blockNumber),
	}, nil
}

func (m *MockApp) ExecuteBlock(ctx context.Context, block types.RawBlock) (types.BlockOutcome, error) {
	m.ExecuteBlockCalls.Add(1)
	if m.ExecuteBlockFn != nil {
		return m.ExecuteBlockFn(ctx, block)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if expected := m.blockNumber + 1; block.Header.BlockNumber != expected {
		return types.BlockOutcome{}, &palletberry.BlockNumberError{
			Expected: uint64(expected),
			Got:      uint64(block.Header.BlockNumber),
		}
	}
	m.blockNumber++

	outcomes := make([]types.ExtrinsicOutcome, len(block.Extrinsics))
	for i, ext := range block.Extrinsics {
		outcomes[i] = types.ExtrinsicOutcome{Index: uint32(i), Caller: ext.Caller}
	}
	return types.BlockOutcome{
		BlockNumber: m.blockNumber,
		Outcomes:    outcomes,
		StateHash:   mockHash(m.blockNumber),
	}, nil
}

func (m *MockApp) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	m.QueryCalls.Add(1)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, req)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.StateQueryResult{BlockNumber: m.blockNumber}, nil
}

func mockHash(n types.BlockNumber) types.Hash {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return types.Hash(sha256.Sum256(buf))
}
