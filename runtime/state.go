package runtime

import (
	"crypto/sha256"
	"fmt"

	"github.com/blockberries/cramberry/pkg/cramberry"

	"github.com/blockberries/palletberry/pallets/balances"
	"github.com/blockberries/palletberry/pallets/poe"
	"github.com/blockberries/palletberry/pallets/system"
	"github.com/blockberries/palletberry/types"
)

// Snapshot is an ordered export of every pallet's storage.
type Snapshot struct {
	BlockNumber types.BlockNumber                                 `cramberry:"1"`
	Nonces      []system.NonceEntry[types.AccountID, types.Nonce] `cramberry:"2"`
	Balances    []balances.Entry[types.AccountID, types.Balance]  `cramberry:"3"`
	Claims      []poe.Entry[types.AccountID, types.Content]       `cramberry:"4"`
}

// Snapshot exports the runtime's state. Entries are sorted by key, so
// two runtimes with equal state produce equal snapshots.
func (rt *Runtime) Snapshot() Snapshot {
	return Snapshot{
		BlockNumber: rt.system.BlockNumber(),
		Nonces:      rt.system.Entries(),
		Balances:    rt.balances.Entries(),
		Claims:      rt.proofOfExistence.Entries(),
	}
}

// StateHash returns the SHA-256 digest of the encoded snapshot.
func (rt *Runtime) StateHash() (types.Hash, error) {
	data, err := cramberry.Marshal(rt.Snapshot())
	if err != nil {
		return types.Hash{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	return types.Hash(sha256.Sum256(data)), nil
}
