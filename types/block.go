package types

// Header carries block metadata. The only field the executor checks
// is BlockNumber, which must follow the runtime's current height.
type Header struct {
	BlockNumber BlockNumber `cramberry:"1"`
}

// Extrinsic is one state-transition request attributed to Caller.
type Extrinsic[C any] struct {
	Caller AccountID `cramberry:"1"`
	Call   C         `cramberry:"2"`
}

// Block is an ordered batch of extrinsics.
type Block[C any] struct {
	Header     Header         `cramberry:"1"`
	Extrinsics []Extrinsic[C] `cramberry:"2"`
}

// RawExtrinsic is the wire form of an extrinsic: the call is an
// encoded call envelope.
type RawExtrinsic = Extrinsic[[]byte]

// RawBlock is the wire form of a block.
type RawBlock = Block[[]byte]

// ExtrinsicOutcome is the result of applying a single extrinsic.
type ExtrinsicOutcome struct {
	// Position of this extrinsic in the block (0-indexed).
	Index    uint32    `cramberry:"1"`
	Caller   AccountID `cramberry:"2"`
	Pallet   string    `cramberry:"3"`
	Function string    `cramberry:"4"`
	// Pallet-scoped reason code. 0 = success.
	Code uint32 `cramberry:"5"`
	// Human-readable failure reason. Empty on success.
	Info string `cramberry:"6"`
}

// OK returns true if the extrinsic's call succeeded.
func (o ExtrinsicOutcome) OK() bool { return o.Code == 0 }

// BlockOutcome is the output of executing a valid block.
type BlockOutcome struct {
	// Height reached by executing the block.
	BlockNumber BlockNumber `cramberry:"1"`
	// Per-extrinsic results, in block order.
	Outcomes []ExtrinsicOutcome `cramberry:"2"`
	// Runtime state fingerprint after this block.
	StateHash Hash `cramberry:"3"`
}

// Failures returns the outcomes of the extrinsics that failed.
func (b BlockOutcome) Failures() []ExtrinsicOutcome {
	var failed []ExtrinsicOutcome
	for _, o := range b.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}
