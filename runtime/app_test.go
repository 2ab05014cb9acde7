package runtime_test

import (
	"context"
	"testing"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/runtime"
	pallettest "github.com/blockberries/palletberry/testing"
	"github.com/blockberries/palletberry/types"
)

func TestApp_Compliance(t *testing.T) {
	pallettest.RunComplianceSuite(t, func() palletberry.Lifecycle {
		return runtime.NewApp()
	})
}

func TestApp_Scenario(t *testing.T) {
	h := pallettest.NewHarness(t, runtime.NewApp())
	h.GenesisDefault()

	outcome := h.Execute(runtime.NewBlock(1,
		runtime.NewExtrinsic("alice", runtime.Transfer("bob", 20)),
		runtime.NewExtrinsic("alice", runtime.Transfer("charlie", 50)),
		runtime.NewExtrinsic("alice", runtime.CreateClaim("document")),
	))
	if failed := outcome.Failures(); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}

	outcome = h.Execute(runtime.NewBlock(2,
		runtime.NewExtrinsic("bob", runtime.CreateClaim("document")),
	))
	failed := outcome.Failures()
	if len(failed) != 1 || failed[0].Info != "content is already claimed" {
		t.Fatalf("expected one already-claimed failure, got %+v", failed)
	}
	if outcome.BlockNumber != 2 {
		t.Errorf("expected outcome at block 2, got %d", outcome.BlockNumber)
	}

	if got := h.Balance("alice"); got != 30 {
		t.Errorf("alice: expected 30, got %d", got)
	}
	if got := h.Balance("bob"); got != 20 {
		t.Errorf("bob: expected 20, got %d", got)
	}
	if got := h.Balance("charlie"); got != 50 {
		t.Errorf("charlie: expected 50, got %d", got)
	}
	if got := h.Nonce("alice"); got != 3 {
		t.Errorf("alice nonce: expected 3, got %d", got)
	}
	if got := h.Nonce("bob"); got != 1 {
		t.Errorf("bob nonce: expected 1, got %d", got)
	}
	if got := h.BlockNumber(); got != 2 {
		t.Errorf("block number: expected 2, got %d", got)
	}

	claim := h.Query(runtime.PathClaim, []byte("document"))
	if !claim.OK() || string(claim.Value) != "alice" {
		t.Errorf("expected document owned by alice, got code=%d value=%q", claim.Code, claim.Value)
	}
}

func TestApp_Queries(t *testing.T) {
	h := pallettest.NewHarness(t, runtime.NewApp())
	resp := h.GenesisDefault()

	if got := h.Nonce("nobody"); got != 0 {
		t.Errorf("unseen nonce: expected 0, got %d", got)
	}
	if got := h.Balance("nobody"); got != 0 {
		t.Errorf("unseen balance: expected 0, got %d", got)
	}

	missing := h.Query(runtime.PathClaim, []byte("nothing"))
	if missing.Code != 1 || missing.Info != "claim does not exist" {
		t.Errorf("unexpected missing-claim result: %+v", missing)
	}

	hash := h.Query(runtime.PathStateHash, nil)
	if types.Hash(hash.Value) != resp.StateHash {
		t.Error("state hash query does not match handshake")
	}

	unknown := h.Query("/nope", nil)
	if unknown.OK() {
		t.Error("expected unknown path to fail")
	}
}

func TestApp_MalformedBlockRejected(t *testing.T) {
	h := pallettest.NewHarness(t, runtime.NewApp())
	h.GenesisDefault()

	raw := h.Encode(runtime.NewBlock(1,
		runtime.NewExtrinsic("alice", runtime.Transfer("bob", 10)),
	))
	raw.Extrinsics = append(raw.Extrinsics, types.RawExtrinsic{Caller: "alice", Call: []byte{}})

	err := h.MustReject(raw)
	m, ok := palletberry.IsMalformed(err)
	if !ok {
		t.Fatalf("expected MalformedBlockError, got %v", err)
	}
	if m.Index != 1 {
		t.Errorf("expected index 1, got %d", m.Index)
	}

	// Nothing from the rejected block was applied.
	if got := h.BlockNumber(); got != 0 {
		t.Errorf("expected block number 0, got %d", got)
	}
	if got := h.Balance("bob"); got != 0 {
		t.Errorf("expected bob=0, got %d", got)
	}
	if got := h.Nonce("alice"); got != 0 {
		t.Errorf("expected alice nonce 0, got %d", got)
	}
}

func TestApp_HandshakeWithoutGenesis(t *testing.T) {
	app := runtime.NewApp()
	resp, err := app.Handshake(context.Background(), types.HandshakeRequest{})
	if err != nil {
		t.Fatalf("Handshake failed: %v", err)
	}
	if resp.BlockNumber != 0 {
		t.Errorf("expected block number 0, got %d", resp.BlockNumber)
	}
	if app.Runtime().Balances().TotalIssuance() != 0 {
		t.Error("handshake without genesis funded accounts")
	}
}
