// Package metrics defines the runtime's metrics surface and its
// Prometheus and no-op implementations.
package metrics

import (
	"net/http"
	"time"
)

// Extrinsic results used as the "result" label.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// Metrics is implemented by every metrics backend.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// SetBlockNumber records the runtime's current height.
	SetBlockNumber(n uint64)
	// IncBlocksExecuted counts a block that passed validation.
	IncBlocksExecuted()
	// IncBlocksRejected counts a block rejected before any mutation.
	IncBlocksRejected(reason string)
	// IncExtrinsics counts one applied extrinsic.
	IncExtrinsics(pallet, result string)
	// ObserveBlockDuration records the time spent executing a block.
	ObserveBlockDuration(d time.Duration)
	// Handler returns the HTTP handler exposing the metrics, or nil.
	Handler() http.Handler
}
