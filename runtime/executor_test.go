package runtime

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/pallets/balances"
	"github.com/blockberries/palletberry/pallets/poe"
	"github.com/blockberries/palletberry/types"
)

func newFundedRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	rt := New(opts...)
	if err := rt.InitGenesis(types.GenesisDoc{
		ChainID:  "test",
		Balances: []types.GenesisBalance{{Account: "alice", Amount: 100}},
	}); err != nil {
		t.Fatalf("InitGenesis failed: %v", err)
	}
	return rt
}

func mustExecute(t *testing.T, rt *Runtime, block Block) []types.ExtrinsicOutcome {
	t.Helper()
	outcomes, err := rt.ExecuteBlock(block)
	if err != nil {
		t.Fatalf("ExecuteBlock(%d) failed: %v", block.Header.BlockNumber, err)
	}
	return outcomes
}

func TestExecuteBlock_Scenario(t *testing.T) {
	rt := newFundedRuntime(t)

	outcomes := mustExecute(t, rt, NewBlock(1,
		NewExtrinsic("alice", Transfer("bob", 20)),
		NewExtrinsic("alice", Transfer("charlie", 50)),
		NewExtrinsic("alice", CreateClaim("document")),
	))
	for _, o := range outcomes {
		if !o.OK() {
			t.Fatalf("extrinsic %d failed: %s", o.Index, o.Info)
		}
	}

	if got := rt.Balances().Balance("alice"); got != 30 {
		t.Errorf("alice: expected 30, got %d", got)
	}
	if got := rt.Balances().Balance("bob"); got != 20 {
		t.Errorf("bob: expected 20, got %d", got)
	}
	if got := rt.Balances().Balance("charlie"); got != 50 {
		t.Errorf("charlie: expected 50, got %d", got)
	}
	if owner, ok := rt.ProofOfExistence().Claim("document"); !ok || owner != "alice" {
		t.Errorf("expected document claimed by alice, got %q (%v)", owner, ok)
	}
	if got := rt.Nonce("alice"); got != 3 {
		t.Errorf("alice nonce: expected 3, got %d", got)
	}
	if got := rt.BlockNumber(); got != 1 {
		t.Errorf("block number: expected 1, got %d", got)
	}

	outcomes = mustExecute(t, rt, NewBlock(2,
		NewExtrinsic("bob", CreateClaim("document")),
	))
	if len(outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(outcomes))
	}
	o := outcomes[0]
	if o.OK() || o.Info != "content is already claimed" {
		t.Errorf("expected already-claimed failure, got %+v", o)
	}
	if o.Pallet != poe.Name || o.Function != "create_claim" || o.Caller != "bob" {
		t.Errorf("unexpected record: %+v", o)
	}
	if o.Code != poe.ErrAlreadyClaimed.Code {
		t.Errorf("expected code %d, got %d", poe.ErrAlreadyClaimed.Code, o.Code)
	}
	if got := rt.Nonce("bob"); got != 1 {
		t.Errorf("bob nonce: expected 1, got %d", got)
	}
	if got := rt.BlockNumber(); got != 2 {
		t.Errorf("block number: expected 2, got %d", got)
	}
	if owner, _ := rt.ProofOfExistence().Claim("document"); owner != "alice" {
		t.Errorf("claim owner changed to %q", owner)
	}
}

func TestExecuteBlock_NonceIncrementsOnFailure(t *testing.T) {
	rt := newFundedRuntime(t)

	outcomes := mustExecute(t, rt, NewBlock(1,
		NewExtrinsic("bob", Transfer("alice", 1)),
		NewExtrinsic("bob", RevokeClaim("nothing")),
	))
	for _, o := range outcomes {
		if o.OK() {
			t.Fatalf("extrinsic %d unexpectedly succeeded", o.Index)
		}
	}
	if got := rt.Nonce("bob"); got != 2 {
		t.Errorf("expected bob nonce 2 after two failures, got %d", got)
	}
}

func TestExecuteBlock_AdvancesWhenAllFail(t *testing.T) {
	rt := newFundedRuntime(t)

	mustExecute(t, rt, NewBlock(1,
		NewExtrinsic("bob", Transfer("alice", 5)),
		NewExtrinsic("charlie", Transfer("alice", 5)),
	))
	if got := rt.BlockNumber(); got != 1 {
		t.Errorf("expected block number 1, got %d", got)
	}
}

func TestExecuteBlock_EmptyBlock(t *testing.T) {
	rt := New()
	outcomes := mustExecute(t, rt, NewBlock(1))
	if len(outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(outcomes))
	}
	if rt.BlockNumber() != 1 {
		t.Errorf("expected block number 1, got %d", rt.BlockNumber())
	}
}

func TestExecuteBlock_HeaderMismatch(t *testing.T) {
	rt := newFundedRuntime(t)
	before, err := rt.StateHash()
	if err != nil {
		t.Fatalf("StateHash failed: %v", err)
	}

	for _, n := range []types.BlockNumber{0, 2, 100} {
		outcomes, err := rt.ExecuteBlock(NewBlock(n,
			NewExtrinsic("alice", Transfer("bob", 10)),
		))
		if outcomes != nil {
			t.Errorf("block %d: expected no outcomes, got %+v", n, outcomes)
		}
		b, ok := palletberry.IsBlockNumber(err)
		if !ok {
			t.Fatalf("block %d: expected BlockNumberError, got %v", n, err)
		}
		if b.Expected != 1 || b.Got != uint64(n) {
			t.Errorf("block %d: unexpected fields %+v", n, b)
		}
		if rt.ExecutorState() != "Idle" {
			t.Errorf("block %d: expected Idle after rejection, got %s", n, rt.ExecutorState())
		}
	}

	after, err := rt.StateHash()
	if err != nil {
		t.Fatalf("StateHash failed: %v", err)
	}
	if before != after {
		t.Error("rejected blocks changed state")
	}
	if rt.Nonce("alice") != 0 || rt.Balances().Balance("bob") != 0 {
		t.Error("rejected block applied an extrinsic")
	}
}

func TestExecuteBlock_FailureIsolation(t *testing.T) {
	rt := newFundedRuntime(t)

	outcomes := mustExecute(t, rt, NewBlock(1,
		NewExtrinsic("alice", Transfer("bob", 40)),
		NewExtrinsic("alice", Transfer("bob", 1000)),
		NewExtrinsic("bob", Transfer("charlie", 15)),
	))

	if !outcomes[0].OK() || outcomes[1].OK() || !outcomes[2].OK() {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
	if outcomes[1].Code != balances.ErrInsufficientFunds.Code {
		t.Errorf("expected insufficient funds code, got %d", outcomes[1].Code)
	}
	if got := rt.Balances().Balance("alice"); got != 60 {
		t.Errorf("alice: expected 60, got %d", got)
	}
	if got := rt.Balances().Balance("bob"); got != 25 {
		t.Errorf("bob: expected 25, got %d", got)
	}
	if got := rt.Balances().Balance("charlie"); got != 15 {
		t.Errorf("charlie: expected 15, got %d", got)
	}
}

func TestExecuteBlock_OutcomeOrder(t *testing.T) {
	rt := newFundedRuntime(t)

	outcomes := mustExecute(t, rt, NewBlock(1,
		NewExtrinsic("alice", CreateClaim("a")),
		NewExtrinsic("bob", CreateClaim("b")),
		NewExtrinsic("alice", RevokeClaim("b")),
	))
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != uint32(i) {
			t.Errorf("outcome %d has index %d", i, o.Index)
		}
	}
	if outcomes[2].Info != poe.ErrNotOwner.Reason {
		t.Errorf("expected not-owner failure, got %+v", outcomes[2])
	}
}

func TestExecuteBlock_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	rt := newFundedRuntime(t, WithLogger(logging.NewTextLogger(&buf, slog.LevelDebug)))

	mustExecute(t, rt, NewBlock(1,
		NewExtrinsic("alice", Transfer("bob", 1)),
		NewExtrinsic("bob", Transfer("alice", 500)),
	))

	out := buf.String()
	if strings.Count(out, "extrinsic failed") != 1 {
		t.Fatalf("expected exactly one failure log, got:\n%s", out)
	}
	for _, want := range []string{
		"component=runtime",
		"index=1",
		"caller=bob",
		"pallet=balances",
		"function=transfer",
		`reason="insufficient funds"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestExecutor_StateMachine(t *testing.T) {
	var e executor
	e.init()

	if e.State() != "Idle" {
		t.Fatalf("expected Idle, got %s", e.State())
	}
	e.beginValidate()
	if e.State() != "Validating" {
		t.Fatalf("expected Validating, got %s", e.State())
	}
	e.beginApply()
	if e.State() != "Applying" {
		t.Fatalf("expected Applying, got %s", e.State())
	}
	e.finish()
	if e.State() != "Idle" {
		t.Fatalf("expected Idle, got %s", e.State())
	}

	e.beginValidate()
	e.reject()
	if e.State() != "Idle" {
		t.Fatalf("expected Idle after reject, got %s", e.State())
	}
}

func TestExecutor_ReentryPanics(t *testing.T) {
	var e executor
	e.init()
	e.beginValidate()
	e.beginApply()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for re-entrant execution")
		}
	}()

	e.beginValidate()
}

func TestExecutor_ApplyWithoutValidatePanics(t *testing.T) {
	var e executor
	e.init()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for apply without validate")
		}
	}()

	e.beginApply()
}

func TestExecuteBlock_MissingCallRejected(t *testing.T) {
	cases := map[string]Call{
		"nil call":          nil,
		"empty balances":    BalancesCall{},
		"empty poe":         ProofOfExistenceCall{},
		"nil balances ptr":  (*BalancesCall)(nil),
		"empty poe pointer": &ProofOfExistenceCall{},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			rt := newFundedRuntime(t)
			before, err := rt.StateHash()
			if err != nil {
				t.Fatalf("StateHash failed: %v", err)
			}

			_, err = rt.ExecuteBlock(NewBlock(1,
				NewExtrinsic("alice", Transfer("bob", 10)),
				NewExtrinsic("alice", call),
			))
			m, ok := palletberry.IsMalformed(err)
			if !ok {
				t.Fatalf("expected MalformedBlockError, got %v", err)
			}
			if m.Index != 1 {
				t.Errorf("expected index 1, got %d", m.Index)
			}
			if !errors.Is(err, palletberry.ErrEmptyCall) {
				t.Errorf("expected ErrEmptyCall cause, got %v", m.Err)
			}

			if rt.BlockNumber() != 0 {
				t.Errorf("block number advanced to %d", rt.BlockNumber())
			}
			if rt.Nonce("alice") != 0 {
				t.Errorf("alice nonce advanced to %d", rt.Nonce("alice"))
			}
			after, err := rt.StateHash()
			if err != nil {
				t.Fatalf("StateHash failed: %v", err)
			}
			if after != before {
				t.Error("state hash changed after rejected block")
			}
			if rt.ExecutorState() != "Idle" {
				t.Errorf("expected executor Idle, got %s", rt.ExecutorState())
			}

			mustExecute(t, rt, NewBlock(1))
		})
	}
}
