package runtime

import (
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/pallets/balances"
	"github.com/blockberries/palletberry/pallets/poe"
	"github.com/blockberries/palletberry/types"
)

// CallEnvelope is the wire form of a Call: a tagged union with
// exactly one pallet field set.
type CallEnvelope struct {
	Balances         *balances.Envelope[types.AccountID, types.Balance] `cramberry:"1"`
	ProofOfExistence *poe.Envelope[types.AccountID, types.Content]      `cramberry:"2"`
}

// Unwrap returns the call carried by the envelope.
func (e CallEnvelope) Unwrap() (Call, error) {
	switch {
	case e.Balances != nil && e.ProofOfExistence != nil:
		return nil, palletberry.ErrAmbiguousCall
	case e.Balances != nil:
		c, err := e.Balances.Unwrap()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", balances.Name, err)
		}
		return BalancesCall{Call: c}, nil
	case e.ProofOfExistence != nil:
		c, err := e.ProofOfExistence.Unwrap()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", poe.Name, err)
		}
		return ProofOfExistenceCall{Call: c}, nil
	default:
		return nil, palletberry.ErrEmptyCall
	}
}

// EncodeCall serializes call into its wire form.
func EncodeCall(call Call) ([]byte, error) {
	data, err := cramberry.Marshal(call.envelope())
	if err != nil {
		return nil, fmt.Errorf("cramberry marshal: %w", err)
	}
	return data, nil
}

// DecodeCall parses a wire-form call.
func DecodeCall(data []byte) (Call, error) {
	var env CallEnvelope
	if err := cramberry.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("cramberry unmarshal: %w", err)
	}
	return env.Unwrap()
}

// EncodeBlock converts a typed block into its wire form.
func EncodeBlock(block Block) (types.RawBlock, error) {
	raw := types.RawBlock{
		Header:     block.Header,
		Extrinsics: make([]types.RawExtrinsic, len(block.Extrinsics)),
	}
	for i, ext := range block.Extrinsics {
		data, err := EncodeCall(ext.Call)
		if err != nil {
			return types.RawBlock{}, fmt.Errorf("encoding extrinsic %d: %w", i, err)
		}
		raw.Extrinsics[i] = types.RawExtrinsic{Caller: ext.Caller, Call: data}
	}
	return raw, nil
}

// DecodeBlock converts a wire block into a typed block. Any
// undecodable extrinsic fails the whole block with a
// *palletberry.MalformedBlockError.
func DecodeBlock(raw types.RawBlock) (Block, error) {
	block := Block{
		Header:     raw.Header,
		Extrinsics: make([]Extrinsic, len(raw.Extrinsics)),
	}
	for i, ext := range raw.Extrinsics {
		call, err := DecodeCall(ext.Call)
		if err != nil {
			return Block{}, &palletberry.MalformedBlockError{Index: i, Err: err}
		}
		block.Extrinsics[i] = Extrinsic{Caller: ext.Caller, Call: call}
	}
	return block, nil
}
