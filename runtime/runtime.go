// Package runtime composes the system, balances and proof-of-existence
// pallets into a single runtime, routes calls to them, and executes
// blocks of extrinsics.
package runtime

import (
	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/pallets/balances"
	"github.com/blockberries/palletberry/pallets/poe"
	"github.com/blockberries/palletberry/pallets/system"
	"github.com/blockberries/palletberry/types"
)

// Pallet instantiations for this runtime's primitive types.
type (
	System           = system.Pallet[types.AccountID, types.BlockNumber, types.Nonce]
	Balances         = balances.Pallet[types.AccountID, types.Balance]
	ProofOfExistence = poe.Pallet[types.AccountID, types.Content]
)

// Extrinsic and Block carry typed calls.
type (
	Extrinsic = types.Extrinsic[Call]
	Block     = types.Block[Call]
)

// Runtime owns one instance of every pallet plus the sequencing
// state. It is not safe for concurrent use: a single goroutine applies
// blocks, and readers must be serialized against it by the embedder.
type Runtime struct {
	system           *System
	balances         *Balances
	proofOfExistence *ProofOfExistence

	genesisApplied bool

	exec   executor
	logger *logging.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used to report rejected blocks and
// failed extrinsics.
func WithLogger(l *logging.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// New creates a runtime with empty pallets at block number zero.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		system:           system.New[types.AccountID, types.BlockNumber, types.Nonce](),
		balances:         balances.New[types.AccountID, types.Balance](),
		proofOfExistence: poe.New[types.AccountID, types.Content](),
		logger:           logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.logger = rt.logger.WithComponent("runtime")
	rt.exec.init()
	return rt
}

// BlockNumber returns the current block number.
func (rt *Runtime) BlockNumber() types.BlockNumber {
	return rt.system.BlockNumber()
}

// Nonce returns the number of extrinsics attributed to who so far.
func (rt *Runtime) Nonce(who types.AccountID) types.Nonce {
	return rt.system.Nonce(who)
}

// Balances returns the balances pallet for its read accessors and
// genesis setup. It must not be mutated while a block executes.
func (rt *Runtime) Balances() *Balances {
	return rt.balances
}

// ProofOfExistence returns the proof-of-existence pallet for its read
// accessors.
func (rt *Runtime) ProofOfExistence() *ProofOfExistence {
	return rt.proofOfExistence
}

// ExecutorState reports the block executor's state ("Idle",
// "Validating" or "Applying").
func (rt *Runtime) ExecutorState() string {
	return rt.exec.State()
}
