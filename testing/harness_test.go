package pallettest

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/types"
)

func TestMockApp_Compliance(t *testing.T) {
	RunComplianceSuite(t, func() palletberry.Lifecycle {
		return &MockApp{}
	})
}

func TestMockApp_CallCounters(t *testing.T) {
	m := &MockApp{}
	h := NewHarness(t, m)
	h.GenesisDefault()
	h.ExecuteBlock(MakeEmptyBlock(1))
	h.Query("/anything", nil)

	if m.HandshakeCalls.Load() != 1 {
		t.Errorf("expected 1 handshake call, got %d", m.HandshakeCalls.Load())
	}
	if m.ExecuteBlockCalls.Load() != 1 {
		t.Errorf("expected 1 execute call, got %d", m.ExecuteBlockCalls.Load())
	}
	if m.QueryCalls.Load() != 1 {
		t.Errorf("expected 1 query call, got %d", m.QueryCalls.Load())
	}
}

func TestMockApp_ConfiguredExecute(t *testing.T) {
	boom := errors.New("boom")
	m := &MockApp{
		ExecuteBlockFn: func(context.Context, types.RawBlock) (types.BlockOutcome, error) {
			return types.BlockOutcome{}, boom
		},
	}
	h := NewHarness(t, m)
	h.GenesisDefault()

	if err := h.MustReject(MakeEmptyBlock(1)); !errors.Is(err, boom) {
		t.Fatalf("expected configured error, got %v", err)
	}
	if h.Server().State() != "Ready" {
		t.Errorf("expected Ready after rejection, got %s", h.Server().State())
	}
}
