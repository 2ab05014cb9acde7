package types

// HandshakeRequest is sent by the engine on startup.
type HandshakeRequest struct {
	// Genesis state to apply. Nil = resume with current state.
	Genesis *GenesisDoc `cramberry:"1"`
}

// HandshakeResponse reports the runtime's state to the engine.
type HandshakeResponse struct {
	BlockNumber BlockNumber `cramberry:"1"`
	StateHash   Hash        `cramberry:"2"`
}
