// Package poe implements the proof-of-existence pallet: accounts
// claim pieces of content, and each piece has at most one owner.
package poe

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/palletberry"
)

// Name is the pallet name used in calls and records.
const Name = "proof_of_existence"

// Dispatch failure reasons.
var (
	ErrAlreadyClaimed = palletberry.NewDispatchError(Name, 1, "content is already claimed")
	ErrNoSuchClaim    = palletberry.NewDispatchError(Name, 2, "claim does not exist")
	ErrNotOwner       = palletberry.NewDispatchError(Name, 3, "caller is not the owner of the claim")
)

// Compile-time interface check.
var _ palletberry.Dispatcher[string, Call[string, string]] = (*Pallet[string, string])(nil)

// Entry is one claim and its owner.
type Entry[A, C cmp.Ordered] struct {
	Content C `cramberry:"1"`
	Owner   A `cramberry:"2"`
}

// Pallet maps claimed content to its owner. An account may own many
// claims.
type Pallet[A, C cmp.Ordered] struct {
	claims map[C]A
}

// New creates an empty proof-of-existence pallet.
func New[A, C cmp.Ordered]() *Pallet[A, C] {
	return &Pallet[A, C]{claims: make(map[C]A)}
}

// Dispatch routes call to the function it names.
func (p *Pallet[A, C]) Dispatch(caller A, call Call[A, C]) error {
	return call.dispatch(p, caller)
}

// CreateClaim records caller as the owner of claim. It fails if the
// content is already claimed, by anyone.
func (p *Pallet[A, C]) CreateClaim(caller A, claim C) error {
	if _, ok := p.claims[claim]; ok {
		return ErrAlreadyClaimed
	}
	p.claims[claim] = caller
	return nil
}

// RevokeClaim removes claim. Only its owner may revoke it.
func (p *Pallet[A, C]) RevokeClaim(caller A, claim C) error {
	owner, ok := p.claims[claim]
	if !ok {
		return ErrNoSuchClaim
	}
	if owner != caller {
		return ErrNotOwner
	}
	delete(p.claims, claim)
	return nil
}

// Claim returns the owner of claim, if any.
func (p *Pallet[A, C]) Claim(claim C) (A, bool) {
	owner, ok := p.claims[claim]
	return owner, ok
}

// Entries returns every claim ordered by content.
func (p *Pallet[A, C]) Entries() []Entry[A, C] {
	contents := slices.Sorted(maps.Keys(p.claims))
	entries := make([]Entry[A, C], len(contents))
	for i, c := range contents {
		entries[i] = Entry[A, C]{Content: c, Owner: p.claims[c]}
	}
	return entries
}
