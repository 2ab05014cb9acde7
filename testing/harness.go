package pallettest

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/runtime"
	"github.com/blockberries/palletberry/server"
	"github.com/blockberries/palletberry/types"
)

// Harness drives a runtime through the lifecycle server and fails the
// test on any unexpected error.
type Harness struct {
	t   *testing.T
	srv *server.Server
}

// NewHarness creates a test harness wrapping the given runtime.
func NewHarness(t *testing.T, app palletberry.Lifecycle, opts ...server.Option) *Harness {
	t.Helper()
	return &Harness{t: t, srv: server.New(app, opts...)}
}

// Server returns the underlying server for direct access.
func (h *Harness) Server() *server.Server {
	return h.srv
}

// Genesis performs a handshake that applies the given genesis doc.
func (h *Harness) Genesis(genesis types.GenesisDoc) types.HandshakeResponse {
	h.t.Helper()
	resp, err := h.srv.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &genesis,
	})
	if err != nil {
		h.t.Fatalf("Handshake (genesis) failed: %v", err)
	}
	return resp
}

// GenesisDefault performs a genesis handshake with DefaultGenesis.
func (h *Harness) GenesisDefault() types.HandshakeResponse {
	h.t.Helper()
	return h.Genesis(DefaultGenesis())
}

// Resume performs a handshake without genesis.
func (h *Harness) Resume() types.HandshakeResponse {
	h.t.Helper()
	resp, err := h.srv.Handshake(context.Background(), types.HandshakeRequest{})
	if err != nil {
		h.t.Fatalf("Handshake (resume) failed: %v", err)
	}
	return resp
}

// ExecuteBlock executes a wire block that must be accepted.
func (h *Harness) ExecuteBlock(block types.RawBlock) types.BlockOutcome {
	h.t.Helper()
	outcome, err := h.srv.ExecuteBlock(context.Background(), block)
	if err != nil {
		h.t.Fatalf("ExecuteBlock (block=%d) failed: %v", block.Header.BlockNumber, err)
	}
	return outcome
}

// Execute encodes and executes a typed block that must be accepted.
func (h *Harness) Execute(block runtime.Block) types.BlockOutcome {
	h.t.Helper()
	return h.ExecuteBlock(h.Encode(block))
}

// MustReject executes a wire block that must be rejected and returns
// the rejection.
func (h *Harness) MustReject(block types.RawBlock) error {
	h.t.Helper()
	_, err := h.srv.ExecuteBlock(context.Background(), block)
	if err == nil {
		h.t.Fatalf("expected block %d to be rejected", block.Header.BlockNumber)
	}
	return err
}

// Encode converts a typed block into wire form.
func (h *Harness) Encode(block runtime.Block) types.RawBlock {
	h.t.Helper()
	raw, err := runtime.EncodeBlock(block)
	if err != nil {
		h.t.Fatalf("EncodeBlock failed: %v", err)
	}
	return raw
}

// Query reads runtime state.
func (h *Harness) Query(path types.QueryPath, data []byte) types.StateQueryResult {
	h.t.Helper()
	result, err := h.srv.Query(context.Background(), types.StateQuery{
		Path: path,
		Data: data,
	})
	if err != nil {
		h.t.Fatalf("Query failed: %v", err)
	}
	return result
}

// QueryUint64 reads an 8-byte big-endian value that must be present.
func (h *Harness) QueryUint64(path types.QueryPath, data []byte) uint64 {
	h.t.Helper()
	result := h.Query(path, data)
	if !result.OK() {
		h.t.Fatalf("Query %s failed: code=%d info=%q", path, result.Code, result.Info)
	}
	if len(result.Value) != 8 {
		h.t.Fatalf("Query %s: expected 8 bytes, got %d", path, len(result.Value))
	}
	return binary.BigEndian.Uint64(result.Value)
}

// Balance queries the balance of who.
func (h *Harness) Balance(who types.AccountID) types.Balance {
	h.t.Helper()
	return types.Balance(h.QueryUint64(runtime.PathBalance, []byte(who)))
}

// Nonce queries the nonce of who.
func (h *Harness) Nonce(who types.AccountID) types.Nonce {
	h.t.Helper()
	return types.Nonce(h.QueryUint64(runtime.PathNonce, []byte(who)))
}

// BlockNumber queries the current block number.
func (h *Harness) BlockNumber() types.BlockNumber {
	h.t.Helper()
	return types.BlockNumber(h.QueryUint64(runtime.PathBlockNumber, nil))
}

// --- Helper Factories ---

// DefaultGenesis returns a genesis document that funds alice with 100.
func DefaultGenesis() types.GenesisDoc {
	return types.GenesisDoc{
		ChainID:  "test-chain",
		Balances: []types.GenesisBalance{{Account: "alice", Amount: 100}},
	}
}

// MakeEmptyBlock creates an empty wire block at the given height.
func MakeEmptyBlock(number types.BlockNumber) types.RawBlock {
	return types.RawBlock{Header: types.Header{BlockNumber: number}}
}
