package balances

import (
	"cmp"

	"github.com/blockberries/palletberry"
)

// Call is the closed set of dispatchable balances functions. Only
// types in this package can implement it.
type Call[A cmp.Ordered, B palletberry.Unsigned] interface {
	// Function returns the name of the function the call invokes.
	Function() string

	dispatch(p *Pallet[A, B], caller A) error
	envelope() Envelope[A, B]
}

// Transfer invokes Pallet.Transfer.
type Transfer[A cmp.Ordered, B palletberry.Unsigned] struct {
	To     A `cramberry:"1"`
	Amount B `cramberry:"2"`
}

func (Transfer[A, B]) Function() string { return "transfer" }

func (c Transfer[A, B]) dispatch(p *Pallet[A, B], caller A) error {
	return p.Transfer(caller, c.To, c.Amount)
}

func (c Transfer[A, B]) envelope() Envelope[A, B] {
	return Envelope[A, B]{Transfer: &c}
}

// Envelope is the wire form of a Call: exactly one field is set.
type Envelope[A cmp.Ordered, B palletberry.Unsigned] struct {
	Transfer *Transfer[A, B] `cramberry:"1"`
}

// Wrap returns the envelope carrying call.
func Wrap[A cmp.Ordered, B palletberry.Unsigned](call Call[A, B]) Envelope[A, B] {
	return call.envelope()
}

// Unwrap returns the call carried by the envelope.
func (e Envelope[A, B]) Unwrap() (Call[A, B], error) {
	if e.Transfer == nil {
		return nil, palletberry.ErrEmptyCall
	}
	return *e.Transfer, nil
}
