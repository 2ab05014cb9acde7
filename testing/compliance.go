package pallettest

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/runtime"
	"github.com/blockberries/palletberry/types"
)

// RunComplianceSuite runs a standard compliance suite against a
// runtime to verify correct lifecycle and sequencing behavior.
//
// The factory function should return a fresh runtime for each test.
func RunComplianceSuite(t *testing.T, factory func() palletberry.Lifecycle) {
	t.Helper()

	t.Run("genesis_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		resp := h.GenesisDefault()
		if resp.BlockNumber != 0 {
			t.Errorf("genesis handshake should report block number 0, got %d", resp.BlockNumber)
		}
		if resp.StateHash == (types.Hash{}) {
			t.Error("genesis handshake should return a non-zero state hash")
		}
	})

	t.Run("execute_cycle", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		for i := types.BlockNumber(1); i <= 5; i++ {
			outcome := h.ExecuteBlock(MakeEmptyBlock(i))
			if outcome.BlockNumber != i {
				t.Errorf("block %d: outcome reports block number %d", i, outcome.BlockNumber)
			}
		}
	})

	t.Run("empty_blocks_deterministic", func(t *testing.T) {
		h1 := NewHarness(t, factory())
		h1.GenesisDefault()
		h2 := NewHarness(t, factory())
		h2.GenesisDefault()

		for i := types.BlockNumber(1); i <= 3; i++ {
			o1 := h1.ExecuteBlock(MakeEmptyBlock(i))
			o2 := h2.ExecuteBlock(MakeEmptyBlock(i))
			if o1.StateHash != o2.StateHash {
				t.Errorf("block %d: non-deterministic: %s != %s", i, o1.StateHash, o2.StateHash)
			}
		}
	})

	t.Run("deterministic_with_extrinsics", func(t *testing.T) {
		h1 := NewHarness(t, factory())
		h1.GenesisDefault()
		h2 := NewHarness(t, factory())
		h2.GenesisDefault()

		block := sampleBlock(h1, 1)
		o1 := h1.ExecuteBlock(block)
		o2 := h2.ExecuteBlock(block)

		if o1.StateHash != o2.StateHash {
			t.Errorf("non-deterministic with extrinsics: %s != %s", o1.StateHash, o2.StateHash)
		}
		if len(o1.Outcomes) != len(o2.Outcomes) {
			t.Errorf("outcome count mismatch: %d != %d", len(o1.Outcomes), len(o2.Outcomes))
		}
	})

	t.Run("outcome_indices", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		block := sampleBlock(h, 1)
		outcome := h.ExecuteBlock(block)

		if len(outcome.Outcomes) != len(block.Extrinsics) {
			t.Fatalf("expected %d outcomes, got %d", len(block.Extrinsics), len(outcome.Outcomes))
		}
		for i, o := range outcome.Outcomes {
			if o.Index != uint32(i) {
				t.Errorf("extrinsic %d: expected index %d, got %d", i, i, o.Index)
			}
			if o.Caller != block.Extrinsics[i].Caller {
				t.Errorf("extrinsic %d: expected caller %s, got %s", i, block.Extrinsics[i].Caller, o.Caller)
			}
		}
	})

	t.Run("wrong_block_number_rejected", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()
		ref := NewHarness(t, factory())
		ref.GenesisDefault()

		for _, n := range []types.BlockNumber{0, 2, 7} {
			err := h.MustReject(MakeEmptyBlock(n))
			b, ok := palletberry.IsBlockNumber(err)
			if !ok {
				t.Fatalf("block %d: expected BlockNumberError, got %v", n, err)
			}
			if b.Expected != 1 || b.Got != uint64(n) {
				t.Errorf("block %d: unexpected error fields %+v", n, b)
			}
		}

		// Rejections left no trace.
		o1 := h.ExecuteBlock(MakeEmptyBlock(1))
		o2 := ref.ExecuteBlock(MakeEmptyBlock(1))
		if o1.StateHash != o2.StateHash {
			t.Errorf("state changed by rejected blocks: %s != %s", o1.StateHash, o2.StateHash)
		}
	})

	t.Run("replayed_block_rejected", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		h.ExecuteBlock(MakeEmptyBlock(1))
		err := h.MustReject(MakeEmptyBlock(1))
		if _, ok := palletberry.IsBlockNumber(err); !ok {
			t.Fatalf("expected BlockNumberError, got %v", err)
		}
	})

	t.Run("concurrent_query_after_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := h.Server().Query(context.Background(), types.StateQuery{
					Path: runtime.PathBlockNumber,
				})
				if err != nil {
					t.Errorf("concurrent Query failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("query_reports_block_number", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.GenesisDefault()

		h.ExecuteBlock(MakeEmptyBlock(1))
		h.ExecuteBlock(MakeEmptyBlock(2))

		result := h.Query(runtime.PathBlockNumber, nil)
		if result.BlockNumber != 2 {
			t.Errorf("query should report block number 2, got %d", result.BlockNumber)
		}
	})
}

// sampleBlock builds a block mixing succeeding and failing extrinsics
// against DefaultGenesis.
func sampleBlock(h *Harness, number types.BlockNumber) types.RawBlock {
	return h.Encode(runtime.NewBlock(number,
		runtime.NewExtrinsic("alice", runtime.Transfer("bob", 10)),
		runtime.NewExtrinsic("bob", runtime.Transfer("charlie", 1000)),
		runtime.NewExtrinsic("alice", runtime.CreateClaim("doc")),
		runtime.NewExtrinsic("bob", runtime.RevokeClaim("doc")),
	))
}
