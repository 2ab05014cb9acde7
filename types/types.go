// Package types defines the core data types of a palletberry runtime.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration) are handled in the transport packages.
package types

import "encoding/hex"

// AccountID identifies the caller of an extrinsic. It is assumed to
// be authenticated already; the runtime never verifies it.
type AccountID string

// BlockNumber is the height of a block.
type BlockNumber uint64

// Nonce counts the extrinsics attributed to one account.
type Nonce uint64

// Balance is an amount held by an account in the balances pallet.
type Balance uint64

// Content is a piece of data that can be claimed in the
// proof-of-existence pallet. Typically a content hash.
type Content string

// Hash is a 32-byte cryptographic hash.
type Hash [32]byte

// String returns the hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// QueryPath names a state accessor (e.g., "/balance").
type QueryPath string
