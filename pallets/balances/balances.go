// Package balances implements a balance-ledger pallet. Accounts hold
// an unsigned balance; the only callable function is Transfer.
package balances

import (
	"cmp"
	"maps"
	"slices"

	"github.com/blockberries/palletberry"
)

// Name is the pallet name used in calls and records.
const Name = "balances"

// Dispatch failure reasons.
var (
	ErrInsufficientFunds = palletberry.NewDispatchError(Name, 1, "insufficient funds")
	ErrOverflow          = palletberry.NewDispatchError(Name, 2, "overflow when adding to balance")
)

// Compile-time interface check.
var _ palletberry.Dispatcher[string, Call[string, uint64]] = (*Pallet[string, uint64])(nil)

// Entry is one account's balance.
type Entry[A cmp.Ordered, B palletberry.Unsigned] struct {
	Account A `cramberry:"1"`
	Balance B `cramberry:"2"`
}

// Pallet maps accounts to balances. A missing account has balance
// zero.
type Pallet[A cmp.Ordered, B palletberry.Unsigned] struct {
	balances map[A]B
}

// New creates an empty balances pallet.
func New[A cmp.Ordered, B palletberry.Unsigned]() *Pallet[A, B] {
	return &Pallet[A, B]{balances: make(map[A]B)}
}

// Dispatch routes call to the function it names.
func (p *Pallet[A, B]) Dispatch(caller A, call Call[A, B]) error {
	return call.dispatch(p, caller)
}

// Transfer moves amount from caller to to. It fails, leaving both
// balances unchanged, if caller holds less than amount or if the
// receiving balance would overflow.
func (p *Pallet[A, B]) Transfer(caller, to A, amount B) error {
	from := p.balances[caller]
	if from < amount {
		return ErrInsufficientFunds
	}
	if caller == to {
		return nil
	}
	dest := p.balances[to]
	if dest+amount < dest {
		return ErrOverflow
	}
	p.balances[caller] = from - amount
	p.balances[to] = dest + amount
	return nil
}

// SetBalance overwrites the balance of who. It is not dispatchable;
// genesis and tests use it.
func (p *Pallet[A, B]) SetBalance(who A, amount B) {
	p.balances[who] = amount
}

// Balance returns the balance of who.
func (p *Pallet[A, B]) Balance(who A) B {
	return p.balances[who]
}

// TotalIssuance returns the sum of all balances. It wraps if the sum
// exceeds B.
func (p *Pallet[A, B]) TotalIssuance() B {
	var total B
	for _, b := range p.balances {
		total += b
	}
	return total
}

// Entries returns every stored balance ordered by account.
func (p *Pallet[A, B]) Entries() []Entry[A, B] {
	accounts := slices.Sorted(maps.Keys(p.balances))
	entries := make([]Entry[A, B], len(accounts))
	for i, a := range accounts {
		entries[i] = Entry[A, B]{Account: a, Balance: p.balances[a]}
	}
	return entries
}
