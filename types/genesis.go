package types

// GenesisBalance is an initial balance assignment.
type GenesisBalance struct {
	Account AccountID `cramberry:"1"`
	Amount  Balance   `cramberry:"2"`
}

// GenesisDoc describes the initial runtime state.
type GenesisDoc struct {
	ChainID  string           `cramberry:"1"`
	Balances []GenesisBalance `cramberry:"2"`
}
