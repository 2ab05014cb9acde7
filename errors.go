package palletberry

import (
	"errors"
	"fmt"
)

// ErrEmptyCall is returned when a call envelope names no function.
var ErrEmptyCall = errors.New("call envelope names no function")

// ErrAmbiguousCall is returned when a call envelope names more than
// one function.
var ErrAmbiguousCall = errors.New("call envelope names more than one function")

// DispatchError is the static, human-readable reason a pallet
// function failed. Pallets declare their reasons as package-level
// values so callers can match them with errors.Is.
//
// A DispatchError never fails a block; it is recorded against the
// extrinsic that produced it.
type DispatchError struct {
	Pallet string
	// Pallet-scoped reason code. 0 is reserved for success.
	Code   uint32
	Reason string
}

func (e *DispatchError) Error() string {
	return e.Pallet + ": " + e.Reason
}

// NewDispatchError creates a new DispatchError.
func NewDispatchError(pallet string, code uint32, reason string) *DispatchError {
	return &DispatchError{Pallet: pallet, Code: code, Reason: reason}
}

// IsDispatch checks whether an error is a DispatchError and returns it.
func IsDispatch(err error) (*DispatchError, bool) {
	var d *DispatchError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// BlockNumberError signals that a block header does not name the
// height that follows the runtime's current one. The block is
// rejected before any state changes.
type BlockNumberError struct {
	Expected uint64
	Got      uint64
}

func (e *BlockNumberError) Error() string {
	return fmt.Sprintf("wrong block number: expected %d, got %d", e.Expected, e.Got)
}

// IsBlockNumber checks whether an error is a BlockNumberError and
// returns it.
func IsBlockNumber(err error) (*BlockNumberError, bool) {
	var b *BlockNumberError
	if errors.As(err, &b) {
		return b, true
	}
	return nil, false
}

// MalformedBlockError signals that an extrinsic in a wire block could
// not be decoded into a call. The block is rejected before any state
// changes.
type MalformedBlockError struct {
	Index int
	Err   error
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("malformed extrinsic %d: %v", e.Index, e.Err)
}

func (e *MalformedBlockError) Unwrap() error { return e.Err }

// IsMalformed checks whether an error is a MalformedBlockError and
// returns it.
func IsMalformed(err error) (*MalformedBlockError, bool) {
	var m *MalformedBlockError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
