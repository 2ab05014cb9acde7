package palletgrpc

import (
	"errors"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/server"
	"github.com/blockberries/palletberry/types"
)

// ExecuteBlockResponse is a tagged union carrying either the outcome
// of an applied block or the reason it was rejected. Rejections travel
// in-band so the client can rebuild the typed error.
type ExecuteBlockResponse struct {
	Outcome   *types.BlockOutcome `cramberry:"1"`
	Rejection *BlockRejection     `cramberry:"2"`
}

// BlockRejection describes a block rejected before any mutation.
type BlockRejection struct {
	// One of server.RejectBlockNumber, server.RejectMalformed or
	// server.RejectOther.
	Reason   string `cramberry:"1"`
	Expected uint64 `cramberry:"2"`
	Got      uint64 `cramberry:"3"`
	Index    uint32 `cramberry:"4"`
	Message  string `cramberry:"5"`
}

func newRejection(err error) *BlockRejection {
	if b, ok := palletberry.IsBlockNumber(err); ok {
		return &BlockRejection{
			Reason:   server.RejectBlockNumber,
			Expected: b.Expected,
			Got:      b.Got,
			Message:  err.Error(),
		}
	}
	if m, ok := palletberry.IsMalformed(err); ok {
		msg := err.Error()
		if m.Err != nil {
			msg = m.Err.Error()
		}
		return &BlockRejection{
			Reason:  server.RejectMalformed,
			Index:   uint32(m.Index),
			Message: msg,
		}
	}
	return &BlockRejection{Reason: server.RejectOther, Message: err.Error()}
}

// Err rebuilds the error the server reported.
func (r *BlockRejection) Err() error {
	switch r.Reason {
	case server.RejectBlockNumber:
		return &palletberry.BlockNumberError{Expected: r.Expected, Got: r.Got}
	case server.RejectMalformed:
		return &palletberry.MalformedBlockError{Index: int(r.Index), Err: errors.New(r.Message)}
	default:
		return errors.New(r.Message)
	}
}
