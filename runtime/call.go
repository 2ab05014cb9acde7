package runtime

import (
	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/pallets/balances"
	"github.com/blockberries/palletberry/pallets/poe"
	"github.com/blockberries/palletberry/types"
)

// Compile-time interface check.
var _ palletberry.Dispatcher[types.AccountID, Call] = (*Runtime)(nil)

// Pallet call unions for this runtime's primitive types.
type (
	BalancesFunction         = balances.Call[types.AccountID, types.Balance]
	ProofOfExistenceFunction = poe.Call[types.AccountID, types.Content]
)

// Call is the closed union of every call the runtime dispatches: one
// variant per pallet, each wrapping that pallet's own call union.
// Only types in this package can implement it, and every variant must
// provide its routing arm to do so.
type Call interface {
	// Pallet returns the name of the pallet the call targets.
	Pallet() string
	// Function returns the name of the pallet function the call invokes.
	Function() string

	dispatch(rt *Runtime, caller types.AccountID) error
	envelope() CallEnvelope
}

// BalancesCall targets the balances pallet.
type BalancesCall struct {
	Call BalancesFunction
}

func (BalancesCall) Pallet() string     { return balances.Name }
func (c BalancesCall) Function() string { return c.Call.Function() }

func (c BalancesCall) dispatch(rt *Runtime, caller types.AccountID) error {
	return rt.balances.Dispatch(caller, c.Call)
}

func (c BalancesCall) envelope() CallEnvelope {
	env := balances.Wrap(c.Call)
	return CallEnvelope{Balances: &env}
}

// ProofOfExistenceCall targets the proof-of-existence pallet.
type ProofOfExistenceCall struct {
	Call ProofOfExistenceFunction
}

func (ProofOfExistenceCall) Pallet() string     { return poe.Name }
func (c ProofOfExistenceCall) Function() string { return c.Call.Function() }

func (c ProofOfExistenceCall) dispatch(rt *Runtime, caller types.AccountID) error {
	return rt.proofOfExistence.Dispatch(caller, c.Call)
}

func (c ProofOfExistenceCall) envelope() CallEnvelope {
	env := poe.Wrap(c.Call)
	return CallEnvelope{ProofOfExistence: &env}
}

// Dispatch invokes the single pallet function call names on behalf of
// caller and returns its result unchanged.
func (rt *Runtime) Dispatch(caller types.AccountID, call Call) error {
	return call.dispatch(rt, caller)
}

// Transfer builds a balances transfer call.
func Transfer(to types.AccountID, amount types.Balance) Call {
	return BalancesCall{Call: balances.Transfer[types.AccountID, types.Balance]{To: to, Amount: amount}}
}

// CreateClaim builds a proof-of-existence create_claim call.
func CreateClaim(claim types.Content) Call {
	return ProofOfExistenceCall{Call: poe.CreateClaim[types.AccountID, types.Content]{Claim: claim}}
}

// RevokeClaim builds a proof-of-existence revoke_claim call.
func RevokeClaim(claim types.Content) Call {
	return ProofOfExistenceCall{Call: poe.RevokeClaim[types.AccountID, types.Content]{Claim: claim}}
}

// NewBlock builds a block at the given height.
func NewBlock(number types.BlockNumber, extrinsics ...Extrinsic) Block {
	return Block{
		Header:     types.Header{BlockNumber: number},
		Extrinsics: extrinsics,
	}
}

// NewExtrinsic attributes call to caller.
func NewExtrinsic(caller types.AccountID, call Call) Extrinsic {
	return Extrinsic{Caller: caller, Call: call}
}
