package server

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blockberries/palletberry"
	"github.com/blockberries/palletberry/logging"
	"github.com/blockberries/palletberry/metrics"
	"github.com/blockberries/palletberry/types"
)

// TracerName is the instrumentation name used for the default tracer.
const TracerName = "github.com/blockberries/palletberry/server"

// Rejection reasons used as the metrics "reason" label.
const (
	RejectBlockNumber = "block_number"
	RejectMalformed   = "malformed"
	RejectOther       = "other"
)

// Compile-time interface check.
var _ palletberry.Connection = (*Server)(nil)

// Server wraps a runtime with lifecycle enforcement. The engine
// interacts with the runtime exclusively through this server.
type Server struct {
	app   palletberry.Lifecycle
	guard *LifecycleGuard

	logger  *logging.Logger
	metrics metrics.Metrics
	tracer  trace.Tracer

	mu          sync.Mutex
	lastOutcome *types.BlockOutcome
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics sets the metrics backend.
func WithMetrics(m metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTracerProvider sets the provider the server's tracer is taken
// from. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracer = tp.Tracer(TracerName)
	}
}

// New creates a new Server wrapping the given runtime.
func New(app palletberry.Lifecycle, opts ...Option) *Server {
	s := &Server{
		app:     app,
		guard:   NewLifecycleGuard(),
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewNopMetrics(),
		tracer:  otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent("server")
	return s
}

// Handshake performs the startup handshake and transitions the state
// machine to Ready.
func (s *Server) Handshake(ctx context.Context, req types.HandshakeRequest) (types.HandshakeResponse, error) {
	s.guard.AcquireHandshake()

	resp, err := s.app.Handshake(ctx, req)
	if err != nil {
		s.guard.FailHandshake()
		s.logger.Error("handshake failed", logging.Error(err))
		return resp, err
	}

	s.metrics.SetBlockNumber(uint64(resp.BlockNumber))
	s.guard.CompleteHandshake()

	attrs := []any{
		logging.BlockNumber(uint64(resp.BlockNumber)),
		logging.Hash(resp.StateHash[:]),
	}
	if req.Genesis != nil {
		attrs = append(attrs, logging.ChainID(req.Genesis.ChainID))
	}
	s.logger.Info("handshake complete", attrs...)
	return resp, nil
}

// ExecuteBlock applies a block. Calls are serialized; a rejected block
// leaves the runtime untouched.
func (s *Server) ExecuteBlock(ctx context.Context, block types.RawBlock) (types.BlockOutcome, error) {
	s.guard.AcquireExecute()
	defer s.guard.ReleaseExecute()

	ctx, span := s.tracer.Start(ctx, "palletberry.ExecuteBlock",
		trace.WithAttributes(
			attribute.String("block.number", strconv.FormatUint(uint64(block.Header.BlockNumber), 10)),
			attribute.Int("block.extrinsics", len(block.Extrinsics)),
		),
	)
	defer span.End()

	start := time.Now()
	outcome, err := s.app.ExecuteBlock(ctx, block)
	elapsed := time.Since(start)

	if err != nil {
		reason := rejectReason(err)
		s.metrics.IncBlocksRejected(reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		s.logger.Warn("block rejected",
			logging.BlockNumber(uint64(block.Header.BlockNumber)),
			logging.Reason(reason),
			logging.Error(err),
		)
		return outcome, err
	}

	failures := 0
	for _, o := range outcome.Outcomes {
		result := metrics.ResultOK
		if !o.OK() {
			result = metrics.ResultFailed
			failures++
		}
		s.metrics.IncExtrinsics(o.Pallet, result)
	}
	s.metrics.IncBlocksExecuted()
	s.metrics.SetBlockNumber(uint64(outcome.BlockNumber))
	s.metrics.ObserveBlockDuration(elapsed)

	span.SetAttributes(attribute.Int("block.failures", failures))
	span.SetStatus(codes.Ok, "")

	s.mu.Lock()
	s.lastOutcome = &outcome
	s.mu.Unlock()

	s.logger.Info("block executed",
		logging.BlockNumber(uint64(outcome.BlockNumber)),
		logging.Count(len(outcome.Outcomes)),
		"failures", failures,
		logging.Hash(outcome.StateHash[:]),
		logging.Duration(elapsed),
	)
	return outcome, nil
}

// Query reads runtime state. Safe for concurrent use.
func (s *Server) Query(ctx context.Context, req types.StateQuery) (types.StateQueryResult, error) {
	s.guard.CheckConcurrent()
	return s.app.Query(ctx, req)
}

// State returns the current lifecycle state.
func (s *Server) State() string {
	return s.guard.State()
}

// LastOutcome returns a copy of the outcome of the most recently
// applied block, or nil if none has been applied.
func (s *Server) LastOutcome() *types.BlockOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastOutcome == nil {
		return nil
	}
	out := *s.lastOutcome
	out.Outcomes = slices.Clone(s.lastOutcome.Outcomes)
	return &out
}

// Close is a no-op for the server wrapper.
func (s *Server) Close() error { return nil }

func rejectReason(err error) string {
	if _, ok := palletberry.IsBlockNumber(err); ok {
		return RejectBlockNumber
	}
	if _, ok := palletberry.IsMalformed(err); ok {
		return RejectMalformed
	}
	return RejectOther
}
