package metrics

import (
	"net/http"
	"time"
)

// Compile-time interface check.
var _ Metrics = (*NopMetrics)(nil)

// NopMetrics is a no-op implementation of the Metrics interface.
// Use this when metrics collection is disabled.
type NopMetrics struct{}

// NewNopMetrics creates a new NopMetrics instance.
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

func (m *NopMetrics) SetBlockNumber(n uint64)              {}
func (m *NopMetrics) IncBlocksExecuted()                   {}
func (m *NopMetrics) IncBlocksRejected(reason string)      {}
func (m *NopMetrics) IncExtrinsics(pallet, result string)  {}
func (m *NopMetrics) ObserveBlockDuration(d time.Duration) {}

// Handler returns nil since there's nothing to serve.
func (m *NopMetrics) Handler() http.Handler {
	return nil
}
