package palletberry

import (
	"errors"
	"fmt"
	"testing"
)

func TestDispatchError(t *testing.T) {
	err := NewDispatchError("balances", 1, "insufficient funds")
	if err.Code != 1 {
		t.Errorf("expected code 1, got %d", err.Code)
	}

	expected := "balances: insufficient funds"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIsDispatch(t *testing.T) {
	sentinel := NewDispatchError("poe", 2, "claim does not exist")

	// Direct.
	d, ok := IsDispatch(sentinel)
	if !ok {
		t.Fatal("expected IsDispatch to return true")
	}
	if d.Pallet != "poe" {
		t.Errorf("expected pallet poe, got %s", d.Pallet)
	}

	// Wrapped.
	wrapped := fmt.Errorf("dispatch: %w", sentinel)
	d2, ok2 := IsDispatch(wrapped)
	if !ok2 {
		t.Fatal("expected IsDispatch to unwrap wrapped error")
	}
	if !errors.Is(wrapped, sentinel) {
		t.Error("expected errors.Is to match the sentinel")
	}
	if d2.Code != 2 {
		t.Errorf("expected code 2, got %d", d2.Code)
	}

	// Non-dispatch error.
	if _, ok3 := IsDispatch(fmt.Errorf("just a regular error")); ok3 {
		t.Fatal("expected IsDispatch to return false for non-dispatch error")
	}

	// Nil.
	if _, ok4 := IsDispatch(nil); ok4 {
		t.Fatal("expected IsDispatch to return false for nil")
	}
}

func TestBlockNumberError(t *testing.T) {
	err := fmt.Errorf("execute: %w", &BlockNumberError{Expected: 2, Got: 5})

	b, ok := IsBlockNumber(err)
	if !ok {
		t.Fatal("expected IsBlockNumber to unwrap wrapped error")
	}
	if b.Expected != 2 || b.Got != 5 {
		t.Errorf("unexpected fields: %+v", b)
	}

	expected := "execute: wrong block number: expected 2, got 5"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if _, ok := IsMalformed(err); ok {
		t.Error("header mismatch must not report as malformed")
	}
}

func TestMalformedBlockError(t *testing.T) {
	err := &MalformedBlockError{Index: 3, Err: ErrEmptyCall}

	m, ok := IsMalformed(err)
	if !ok {
		t.Fatal("expected IsMalformed to return true")
	}
	if m.Index != 3 {
		t.Errorf("expected index 3, got %d", m.Index)
	}
	if !errors.Is(err, ErrEmptyCall) {
		t.Error("expected MalformedBlockError to unwrap its cause")
	}
}
