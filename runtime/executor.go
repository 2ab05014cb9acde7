package runtime

import (
	"fmt"
	"sync/atomic"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/types"
)

// executorState represents a state in the block executor state machine.
type executorState uint32

const (
	// stateIdle: no block in flight.
	stateIdle executorState = iota
	// stateValidating: the header is being checked. Nothing has been
	// mutated yet.
	stateValidating
	// stateApplying: the height has been advanced and extrinsics are
	// being applied in order. Runs to completion.
	stateApplying
)

func (s executorState) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case stateValidating:
		return "Validating"
	case stateApplying:
		return "Applying"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// executor enforces the Idle → Validating → Applying → Idle cycle.
// Execution is not resumable; no intermediate state is persisted.
type executor struct {
	state atomic.Uint32
}

func (e *executor) init() {
	e.state.Store(uint32(stateIdle))
}

// State returns the current executor state.
func (e *executor) State() string {
	return executorState(e.state.Load()).String()
}

// beginValidate transitions Idle → Validating.
// Panics if a block is already in flight.
func (e *executor) beginValidate() {
	if !e.state.CompareAndSwap(uint32(stateIdle), uint32(stateValidating)) {
		panic(fmt.Sprintf("palletberry: ExecuteBlock called in state %s (expected Idle)",
			executorState(e.state.Load())))
	}
}

// reject transitions Validating → Idle.
func (e *executor) reject() {
	e.state.Store(uint32(stateIdle))
}

// beginApply transitions Validating → Applying.
func (e *executor) beginApply() {
	if !e.state.CompareAndSwap(uint32(stateValidating), uint32(stateApplying)) {
		panic(fmt.Sprintf("palletberry: apply entered in state %s (expected Validating)",
			executorState(e.state.Load())))
	}
}

// finish transitions Applying → Idle.
func (e *executor) finish() {
	e.state.Store(uint32(stateIdle))
}

// ExecuteBlock validates block's header and applies its extrinsics in
// order.
//
// A header that does not name the next height fails the block with a
// *palletberry.BlockNumberError, and an extrinsic without a call fails
// it with a *palletberry.MalformedBlockError, both before anything is
// mutated. Otherwise
// the height is advanced first, then for every extrinsic the caller's
// nonce is incremented and the call dispatched. A failing call is
// recorded and logged; it does not stop the block, and neither earlier
// extrinsics nor its own nonce increment are rolled back.
//
// The returned outcomes hold one entry per extrinsic, in block order.
func (rt *Runtime) ExecuteBlock(block Block) ([]types.ExtrinsicOutcome, error) {
	rt.exec.beginValidate()

	expected := rt.system.BlockNumber() + 1
	got := block.Header.BlockNumber
	if got != expected {
		rt.exec.reject()
		rt.logger.Warn("block rejected",
			logging.BlockNumber(uint64(got)),
			logging.Reason("wrong block number"),
			"expected", uint64(expected),
		)
		return nil, &palletberry.BlockNumberError{Expected: uint64(expected), Got: uint64(got)}
	}

	for i, ext := range block.Extrinsics {
		if err := checkCall(ext.Call); err != nil {
			rt.exec.reject()
			rt.logger.Warn("block rejected",
				logging.BlockNumber(uint64(got)),
				logging.Index(i),
				logging.Reason("malformed extrinsic"),
			)
			return nil, &palletberry.MalformedBlockError{Index: i, Err: err}
		}
	}

	rt.exec.beginApply()
	defer rt.exec.finish()

	rt.system.IncBlockNumber()

	outcomes := make([]types.ExtrinsicOutcome, len(block.Extrinsics))
	for i, ext := range block.Extrinsics {
		outcomes[i] = rt.applyExtrinsic(block.Header.BlockNumber, i, ext)
	}
	return outcomes, nil
}

// applyExtrinsic increments the caller's nonce and dispatches the
// call, turning a dispatch failure into a recorded outcome.
func (rt *Runtime) applyExtrinsic(number types.BlockNumber, index int, ext Extrinsic) types.ExtrinsicOutcome {
	rt.system.IncNonce(ext.Caller)

	outcome := types.ExtrinsicOutcome{
		Index:    uint32(index),
		Caller:   ext.Caller,
		Pallet:   ext.Call.Pallet(),
		Function: ext.Call.Function(),
	}

	err := rt.Dispatch(ext.Caller, ext.Call)
	if err == nil {
		return outcome
	}

	outcome.Info = err.Error()
	outcome.Code = 1
	if d, ok := palletberry.IsDispatch(err); ok {
		outcome.Code = d.Code
		outcome.Info = d.Reason
	}

	rt.logger.Warn("extrinsic failed",
		logging.BlockNumber(uint64(number)),
		logging.Index(index),
		logging.Caller(string(ext.Caller)),
		logging.Pallet(outcome.Pallet),
		logging.Function(outcome.Function),
		logging.Code(outcome.Code),
		logging.Reason(outcome.Info),
	)
	return outcome
}

// checkCall reports whether call names a pallet function.
func checkCall(call Call) error {
	switch c := call.(type) {
	case nil:
		return palletberry.ErrEmptyCall
	case BalancesCall:
		if c.Call == nil {
			return palletberry.ErrEmptyCall
		}
	case *BalancesCall:
		if c == nil || c.Call == nil {
			return palletberry.ErrEmptyCall
		}
	case ProofOfExistenceCall:
		if c.Call == nil {
			return palletberry.ErrEmptyCall
		}
	case *ProofOfExistenceCall:
		if c == nil || c.Call == nil {
			return palletberry.ErrEmptyCall
		}
	}
	return nil
}
