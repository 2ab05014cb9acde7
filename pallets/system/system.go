// Package system implements the sequencing state shared by every
// pallet of a runtime: the current block number and a per-account
// nonce.
package system

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/palletberry"
)

// Name is the pallet name used in records and state snapshots.
const Name = "system"

// NonceEntry is one account's nonce.
type NonceEntry[A cmp.Ordered, N palletberry.Unsigned] struct {
	Account A `cramberry:"1"`
	Nonce   N `cramberry:"2"`
}

// Pallet holds the current block number and the nonce of every
// account seen so far. It exposes no callable functions.
type Pallet[A cmp.Ordered, B, N palletberry.Unsigned] struct {
	blockNumber B
	nonces      map[A]N
}

// New creates a system pallet at block number zero.
func New[A cmp.Ordered, B, N palletberry.Unsigned]() *Pallet[A, B, N] {
	return &Pallet[A, B, N]{nonces: make(map[A]N)}
}

// BlockNumber returns the current block number.
func (p *Pallet[A, B, N]) BlockNumber() B {
	return p.blockNumber
}

// IncBlockNumber advances the block number by one.
func (p *Pallet[A, B, N]) IncBlockNumber() {
	p.blockNumber++
}

// Nonce returns the nonce of who, or zero if the account is unseen.
func (p *Pallet[A, B, N]) Nonce(who A) N {
	return p.nonces[who]
}

// IncNonce advances the nonce of who by one, creating the entry if
// absent.
func (p *Pallet[A, B, N]) IncNonce(who A) {
	p.nonces[who]++
}

// Entries returns every stored nonce ordered by account.
func (p *Pallet[A, B, N]) Entries() []NonceEntry[A, N] {
	accounts := slices.Sorted(maps.Keys(p.nonces))
	entries := make([]NonceEntry[A, N], len(accounts))
	for i, a := range accounts {
		entries[i] = NonceEntry[A, N]{Account: a, Nonce: p.nonces[a]}
	}
	return entries
}
