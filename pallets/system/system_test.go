package system

import "testing"

func newTestPallet() *Pallet[string, uint32, uint32] {
	return New[string, uint32, uint32]()
}

func TestSystem_Init(t *testing.T) {
	p := newTestPallet()
	if p.BlockNumber() != 0 {
		t.Errorf("expected block number 0, got %d", p.BlockNumber())
	}
	if len(p.Entries()) != 0 {
		t.Errorf("expected no nonces, got %d", len(p.Entries()))
	}
}

func TestSystem_IncBlockNumber(t *testing.T) {
	p := newTestPallet()
	p.IncBlockNumber()
	if p.BlockNumber() != 1 {
		t.Errorf("expected block number 1, got %d", p.BlockNumber())
	}
	p.IncBlockNumber()
	if p.BlockNumber() != 2 {
		t.Errorf("expected block number 2, got %d", p.BlockNumber())
	}
}

func TestSystem_NonceUnseen(t *testing.T) {
	p := newTestPallet()
	if n := p.Nonce("alice"); n != 0 {
		t.Errorf("expected nonce 0 for unseen account, got %d", n)
	}
	// Reading must not create an entry.
	if len(p.Entries()) != 0 {
		t.Error("Nonce created an entry")
	}
}

func TestSystem_IncNonce(t *testing.T) {
	p := newTestPallet()
	p.IncNonce("alice")
	p.IncNonce("alice")
	p.IncNonce("bob")

	if n := p.Nonce("alice"); n != 2 {
		t.Errorf("expected alice nonce 2, got %d", n)
	}
	if n := p.Nonce("bob"); n != 1 {
		t.Errorf("expected bob nonce 1, got %d", n)
	}
	if n := p.Nonce("charlie"); n != 0 {
		t.Errorf("expected charlie nonce 0, got %d", n)
	}
}

func TestSystem_EntriesSorted(t *testing.T) {
	p := newTestPallet()
	for _, who := range []string{"charlie", "alice", "bob", "alice"} {
		p.IncNonce(who)
	}

	entries := p.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []NonceEntry[string, uint32]{{"alice", 2}, {"bob", 1}, {"charlie", 1}}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, entries[i], want[i])
		}
	}
}
