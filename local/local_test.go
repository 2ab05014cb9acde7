package local

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/blockberries/palletberry/runtime"
	"github.com/blockberries/palletberry/types"
)

func TestLocalConnection_FullCycle(t *testing.T) {
	conn := NewConnection(runtime.NewApp())
	defer conn.Close()

	// Handshake with genesis.
	resp, err := conn.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &types.GenesisDoc{
			ChainID:  "test",
			Balances: []types.GenesisBalance{{Account: "alice", Amount: 100}},
		},
	})
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	if resp.BlockNumber != 0 {
		t.Errorf("expected block number 0, got %d", resp.BlockNumber)
	}

	// Execute.
	raw, err := runtime.EncodeBlock(runtime.NewBlock(1,
		runtime.NewExtrinsic("alice", runtime.Transfer("bob", 42)),
	))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	outcome, err := conn.ExecuteBlock(context.Background(), raw)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !outcome.Outcomes[0].OK() {
		t.Fatalf("extrinsic failed: %s", outcome.Outcomes[0].Info)
	}
	if outcome.StateHash == resp.StateHash {
		t.Error("expected state hash to change after transfer")
	}

	// Query.
	result, err := conn.Query(context.Background(), types.StateQuery{
		Path: runtime.PathBalance,
		Data: []byte("bob"),
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if got := binary.BigEndian.Uint64(result.Value); got != 42 {
		t.Errorf("expected bob=42, got %d", got)
	}
	if result.BlockNumber != 1 {
		t.Errorf("expected query at block 1, got %d", result.BlockNumber)
	}
}

func TestLocalConnection_QueryConcurrent(t *testing.T) {
	conn := NewConnection(runtime.NewApp())

	_, err := conn.Handshake(context.Background(), types.HandshakeRequest{
		Genesis: &types.GenesisDoc{ChainID: "test"},
	})
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := conn.Query(context.Background(), types.StateQuery{Path: runtime.PathBlockNumber})
			if err != nil {
				t.Errorf("Query error: %v", err)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	if conn.Server().State() != "Ready" {
		t.Errorf("expected Ready, got %s", conn.Server().State())
	}
}
