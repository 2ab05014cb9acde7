package poe

import (
	"cmp"

	"github.com/blockberries/palletberry"
)

// Call is the closed set of dispatchable proof-of-existence
// functions. Only types in this package can implement it.
type Call[A, C cmp.Ordered] interface {
	// Function returns the name of the function the call invokes.
	Function() string

	dispatch(p *Pallet[A, C], caller A) error
	envelope() Envelope[A, C]
}

// CreateClaim invokes Pallet.CreateClaim.
type CreateClaim[A, C cmp.Ordered] struct {
	Claim C `cramberry:"1"`
}

func (CreateClaim[A, C]) Function() string { return "create_claim" }

func (c CreateClaim[A, C]) dispatch(p *Pallet[A, C], caller A) error {
	return p.CreateClaim(caller, c.Claim)
}

func (c CreateClaim[A, C]) envelope() Envelope[A, C] {
	return Envelope[A, C]{CreateClaim: &c}
}

// RevokeClaim invokes Pallet.RevokeClaim.
type RevokeClaim[A, C cmp.Ordered] struct {
	Claim C `cramberry:"1"`
}

func (RevokeClaim[A, C]) Function() string { return "revoke_claim" }

func (c RevokeClaim[A, C]) dispatch(p *Pallet[A, C], caller A) error {
	return p.RevokeClaim(caller, c.Claim)
}

func (c RevokeClaim[A, C]) envelope() Envelope[A, C] {
	return Envelope[A, C]{RevokeClaim: &c}
}

// Envelope is the wire form of a Call: exactly one field is set.
type Envelope[A, C cmp.Ordered] struct {
	CreateClaim *CreateClaim[A, C] `cramberry:"1"`
	RevokeClaim *RevokeClaim[A, C] `cramberry:"2"`
}

// Wrap returns the envelope carrying call.
func Wrap[A, C cmp.Ordered](call Call[A, C]) Envelope[A, C] {
	return call.envelope()
}

// Unwrap returns the call carried by the envelope.
func (e Envelope[A, C]) Unwrap() (Call[A, C], error) {
	switch {
	case e.CreateClaim != nil && e.RevokeClaim != nil:
		return nil, palletberry.ErrAmbiguousCall
	case e.CreateClaim != nil:
		return *e.CreateClaim, nil
	case e.RevokeClaim != nil:
		return *e.RevokeClaim, nil
	default:
		return nil, palletberry.ErrEmptyCall
	}
}
