// Package scheduler implements the invocation decision engine: warm reuse,
// cold start with race-free admission accounting, and FCFS queueing at the
// per-function concurrency limit. It is parametrized on a clock.Clock and a
// backend.Runtime. The simulation harness does not go through this package:
// it runs its own tick-driven admission over the same pool and domain types.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lindqvist/warmsched/internal/backend"
	"github.com/lindqvist/warmsched/internal/clock"
	"github.com/lindqvist/warmsched/internal/domain"
	"github.com/lindqvist/warmsched/internal/logsink"
	"github.com/lindqvist/warmsched/internal/metrics"
	"github.com/lindqvist/warmsched/internal/observability"
	"github.com/lindqvist/warmsched/internal/pool"
	"github.com/lindqvist/warmsched/internal/stats"
)

// Outcome describes how an invocation was handled.
type Outcome struct {
	Kind        domain.Outcome
	ContainerID string
	ColdStart   bool
	DurationMs  int64
}

// Config holds the knobs the scheduler needs beyond its collaborators.
// WarmTime is expressed in the clock's own units: milliseconds for the
// wall clock, ticks for the simulation's stepped clock.
type Config struct {
	WarmTime     int64
	DefaultLimit int
	ProbeTimeout time.Duration
	ImageForFunc func(functionID string) string
}

// Scheduler is the top-level decision engine. One Scheduler is created per
// process and shared by the HTTP front-end and the reaper.
type Scheduler struct {
	pools   *pool.Registry
	runtime backend.Runtime
	clock   clock.Clock
	cfg     Config
	stats   *stats.Tracker
	sink    logsink.Sink
	logger  *slog.Logger

	strategy atomic.Value // domain.Strategy
}

// New builds a Scheduler. sink may be logsink.Noop{} when no persistence is configured.
func New(rt backend.Runtime, clk clock.Clock, cfg Config, strategy domain.Strategy, sink logsink.Sink, logger *slog.Logger) *Scheduler {
	if cfg.ImageForFunc == nil {
		cfg.ImageForFunc = func(functionID string) string { return "" }
	}
	s := &Scheduler{
		pools:   pool.NewRegistry(cfg.DefaultLimit),
		runtime: rt,
		clock:   clk,
		cfg:     cfg,
		stats:   stats.NewTracker(),
		sink:    sink,
		logger:  logger,
	}
	s.strategy.Store(strategy)
	return s
}

// Strategy returns the currently active selection strategy.
func (s *Scheduler) Strategy() domain.Strategy {
	return s.strategy.Load().(domain.Strategy)
}

// SetStrategy atomically swaps the active strategy. Returns ErrUnknownStrategy
// and leaves the current strategy untouched if name isn't recognized.
func (s *Scheduler) SetStrategy(name string) error {
	strat, err := domain.ParseStrategy(name)
	if err != nil {
		return err
	}
	s.strategy.Store(strat)
	return nil
}

// Stats returns the running counters.
func (s *Scheduler) Stats() stats.Snapshot {
	return s.stats.Snapshot()
}

// ResetStats zeroes all counters.
func (s *Scheduler) ResetStats() {
	s.stats.Reset()
}

// Pools exposes the registry for the reaper.
func (s *Scheduler) Pools() *pool.Registry {
	return s.pools
}

// Invoke runs one request against functionID's pool, choosing warm reuse,
// cold start, or queueing per the documented admission algorithm.
func (s *Scheduler) Invoke(ctx context.Context, functionID string, payload []byte) (Outcome, error) {
	strategy := s.Strategy()
	reqID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, "scheduler.invoke",
		observability.AttrFunctionID.String(functionID),
		observability.AttrStrategy.String(string(strategy)),
		observability.AttrRequestID.String(reqID))
	defer span.End()

	s.stats.Received(functionID)
	p := s.pools.GetOrCreate(functionID)

	p.Lock()
	if c := p.PickWarmLocked(strategy, 0); c != nil {
		p.Unlock()
		s.stats.WarmStart(functionID)
		if m := metrics.Current(); m != nil {
			m.RecordWarmStart(functionID)
		}
		return s.dispatch(ctx, p, c, payload, false, reqID)
	}

	if p.CountLocked()+p.StartingLocked() < p.Limit {
		p.ReserveStartLocked()
		p.Unlock()

		id, endpoint, err := s.runtime.Launch(ctx, functionID, s.cfg.ImageForFunc(functionID))
		if err != nil {
			p.Lock()
			p.ReleaseStartLocked()
			p.Unlock()
			observability.SetSpanError(span, err)
			return Outcome{}, fmt.Errorf("%w: %v", domain.ErrColdStartFailed, err)
		}
		if err := s.waitHealthy(ctx, endpoint); err != nil {
			_ = s.runtime.Stop(ctx, id)
			p.Lock()
			p.ReleaseStartLocked()
			p.Unlock()
			observability.SetSpanError(span, err)
			return Outcome{}, fmt.Errorf("%w: %v", domain.ErrColdStartFailed, err)
		}

		c := domain.NewExecuting(id, functionID, endpoint, 0)
		p.Lock()
		p.ReleaseStartLocked()
		p.InsertLocked(c)
		p.Unlock()

		s.stats.ColdStart(functionID)
		if m := metrics.Current(); m != nil {
			m.RecordColdStart(functionID)
		}
		return s.dispatch(ctx, p, c, payload, true, reqID)
	}

	req := &pool.Request{FunctionID: functionID, Payload: payload, Done: make(chan *domain.Container, 1)}
	p.EnqueueLocked(req)
	p.Unlock()
	s.stats.Queued(functionID)
	if m := metrics.Current(); m != nil {
		m.RecordQueued(functionID)
	}
	return Outcome{Kind: domain.OutcomeQueued}, nil
}

func (s *Scheduler) waitHealthy(ctx context.Context, endpoint string) error {
	deadline := s.cfg.ProbeTimeout
	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if err := s.runtime.Probe(probeCtx, endpoint); err == nil {
			return nil
		}
		select {
		case <-probeCtx.Done():
			return fmt.Errorf("probe timeout after %s", deadline)
		case <-ticker.C:
		}
	}
}

// dispatch invokes the container and, on success, hands it to the iterative
// queue drainer instead of returning it straight to idle. The drainer runs in
// the calling goroutine, so dispatch returns only once the queue is empty.
func (s *Scheduler) dispatch(ctx context.Context, p *pool.FunctionPool, c *domain.Container, payload []byte, coldStart bool, reqID string) (Outcome, error) {
	span := observability.SpanFromContext(ctx)
	span.SetAttributes(
		observability.AttrContainerID.String(c.ID),
		observability.AttrColdStart.Bool(coldStart),
	)

	start := time.Now()
	resp, err := s.runtime.Invoke(ctx, c.Endpoint, payload)
	elapsed := time.Since(start).Milliseconds()
	span.SetAttributes(observability.AttrDurationMs.Int64(elapsed))

	s.record(reqID, c.FunctionID, c.ID, coldStart, err == nil, elapsed)

	if err != nil {
		p.Lock()
		c.MarkIdle(s.clock.Now())
		p.Unlock()
		observability.SetSpanError(span, err)
		return Outcome{}, fmt.Errorf("%w: %v", domain.ErrInvocationFailed, err)
	}

	observability.SetSpanOK(span)
	s.Drain(ctx, p, c)
	return Outcome{Kind: domain.OutcomeExecuted, ContainerID: c.ID, ColdStart: coldStart, DurationMs: resp.DurationMs}, nil
}

func (s *Scheduler) record(id, functionID, containerID string, coldStart, ok bool, elapsedMs int64) {
	if s.sink == nil {
		return
	}
	rec := logsink.Record{
		ID:          id,
		FunctionID:  functionID,
		ContainerID: containerID,
		Strategy:    string(s.Strategy()),
		ColdStart:   coldStart,
		Success:     ok,
		DurationMs:  elapsedMs,
		At:          time.Now(),
	}
	go func() {
		if err := s.sink.Save(context.Background(), rec); err != nil && s.logger != nil {
			s.logger.Warn("log sink save failed", "id", rec.ID, "error", err)
		}
	}()
}
