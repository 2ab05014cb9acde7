package runtime

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/pallets/poe"
	"github.com/blockberries/palletberry/types"
)

// Query paths served by App.
const (
	PathBlockNumber types.QueryPath = "/block_number"
	PathNonce       types.QueryPath = "/nonce"
	PathBalance     types.QueryPath = "/balance"
	PathClaim       types.QueryPath = "/claim"
	PathStateHash   types.QueryPath = "/state_hash"
)

// Compile-time interface check.
var _ palletberry.Lifecycle = (*App)(nil)

// App exposes a Runtime through palletberry.Lifecycle. Blocks arrive
// in wire form and are decoded before execution; queries may run
// concurrently with each other.
type App struct {
	mu sync.RWMutex
	rt *Runtime
}

// NewApp creates an App over a fresh runtime.
func NewApp(opts ...Option) *App {
	return &App{rt: New(opts...)}
}

func (app *App) Handshake(_ context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if req.Genesis != nil {
		if err := app.rt.InitGenesis(*req.Genesis); err != nil {
			return types.HandshakeResponse{}, fmt.Errorf("init genesis: %w", err)
		}
	}

	hash, err := app.rt.StateHash()
	if err != nil {
		return types.HandshakeResponse{}, err
	}
	return types.HandshakeResponse{
		BlockNumber: app.rt.BlockNumber(),
		StateHash:   hash,
	}, nil
}

func (app *App) ExecuteBlock(_ context.Context, raw types.RawBlock) (types.BlockOutcome, error) {
	block, err := DecodeBlock(raw)
	if err != nil {
		return types.BlockOutcome{}, err
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	outcomes, err := app.rt.ExecuteBlock(block)
	if err != nil {
		return types.BlockOutcome{}, err
	}

	hash, err := app.rt.StateHash()
	if err != nil {
		return types.BlockOutcome{}, err
	}
	return types.BlockOutcome{
		BlockNumber: app.rt.BlockNumber(),
		Outcomes:    outcomes,
		StateHash:   hash,
	}, nil
}

func (app *App) Query(_ context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	app.mu.RLock()
	defer app.mu.RUnlock()

	number := app.rt.BlockNumber()

	switch req.Path {
	case PathBlockNumber:
		return types.StateQueryResult{
			Value:       uint64Bytes(uint64(number)),
			BlockNumber: number,
		}, nil

	case PathNonce:
		who := types.AccountID(req.Data)
		return types.StateQueryResult{
			Key:         req.Data,
			Value:       uint64Bytes(uint64(app.rt.Nonce(who))),
			BlockNumber: number,
		}, nil

	case PathBalance:
		who := types.AccountID(req.Data)
		return types.StateQueryResult{
			Key:         req.Data,
			Value:       uint64Bytes(uint64(app.rt.Balances().Balance(who))),
			BlockNumber: number,
		}, nil

	case PathClaim:
		owner, ok := app.rt.ProofOfExistence().Claim(types.Content(req.Data))
		if !ok {
			return types.StateQueryResult{
				Code:        1,
				Key:         req.Data,
				BlockNumber: number,
				Info:        poe.ErrNoSuchClaim.Reason,
			}, nil
		}
		return types.StateQueryResult{
			Key:         req.Data,
			Value:       []byte(owner),
			BlockNumber: number,
		}, nil

	case PathStateHash:
		hash, err := app.rt.StateHash()
		if err != nil {
			return types.StateQueryResult{}, err
		}
		return types.StateQueryResult{
			Value:       hash[:],
			BlockNumber: number,
		}, nil

	default:
		return types.StateQueryResult{Code: 1, Info: "unknown query path", BlockNumber: number}, nil
	}
}

// Runtime returns the underlying runtime. Callers must not use it
// while the App is executing blocks.
func (app *App) Runtime() *Runtime {
	return app.rt
}

func uint64Bytes(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}
