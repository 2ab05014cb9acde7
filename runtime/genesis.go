package runtime

import (
	"errors"
	"fmt"

	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/types"
)

var (
	// ErrGenesisApplied is returned when genesis is applied twice.
	ErrGenesisApplied = errors.New("genesis already applied")
	// ErrGenesisHeight is returned when genesis is applied after the
	// first block.
	ErrGenesisHeight = errors.New("genesis must be applied at block number zero")
)

// InitGenesis seeds the balances pallet from doc. It may run once,
// before the first block. A document with an empty or repeated
// account is rejected without touching state.
func (rt *Runtime) InitGenesis(doc types.GenesisDoc) error {
	if rt.genesisApplied {
		return ErrGenesisApplied
	}
	if rt.system.BlockNumber() != 0 {
		return ErrGenesisHeight
	}

	seen := make(map[types.AccountID]struct{}, len(doc.Balances))
	for i, b := range doc.Balances {
		if b.Account == "" {
			return fmt.Errorf("genesis balance %d: empty account", i)
		}
		if _, dup := seen[b.Account]; dup {
			return fmt.Errorf("genesis balance %d: duplicate account %q", i, b.Account)
		}
		seen[b.Account] = struct{}{}
	}

	for _, b := range doc.Balances {
		rt.balances.SetBalance(b.Account, b.Amount)
	}
	rt.genesisApplied = true

	rt.logger.Info("genesis applied",
		logging.ChainID(doc.ChainID),
		logging.Count(len(doc.Balances)),
	)
	return nil
}
