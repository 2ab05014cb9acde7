package types

// StateQuery is a request to read runtime state.
type StateQuery struct {
	Path QueryPath `cramberry:"1"`
	Data []byte    `cramberry:"2"`
}

// StateQueryResult is the runtime's response to a state query.
type StateQueryResult struct {
	Code        uint32      `cramberry:"1"`
	Key         []byte      `cramberry:"2"`
	Value       []byte      `cramberry:"3"`
	BlockNumber BlockNumber `cramberry:"4"`
	Info        string      `cramberry:"5"`
}

// OK returns true if the query was answered.
func (r StateQueryResult) OK() bool { return r.Code == 0 }
