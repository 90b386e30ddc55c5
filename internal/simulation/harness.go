// Package simulation replays a canned request trace against the same
// domain.Container/domain.Strategy/pool.FunctionPool types the production
// scheduler uses, driven by a stepped integer clock instead of real time,
// to produce reproducible cold-start counts for comparing LCS vs MRU.
//
// Production completion is detected by Runtime.Invoke physically blocking
// until the function returns; the simulation has no such wait to block on,
// so instead of forcing it through the blocking Scheduler.Invoke path, it
// drives the identical state machine directly against the stepped clock,
// the way the original research script advanced one container's state per
// tick. Cold starts still go through backend.Runtime.Launch so the
// interface boundary is exercised the same way in both modes.
package simulation

import (
	"context"

	"github.com/lindqvist/warmsched/internal/backend"
	"github.com/lindqvist/warmsched/internal/clock"
	"github.com/lindqvist/warmsched/internal/domain"
	"github.com/lindqvist/warmsched/internal/pool"
)

// Request is one entry in a canned trace: a function arriving at a given tick.
type Request struct {
	ArrivalTime int64
	FunctionID  string
}

// Config parametrizes a single simulation run.
type Config struct {
	WarmTime      int64
	ExecutionTime int64
	SimulationEnd int64
	DefaultLimit  int
	Strategy      domain.Strategy
	Requests      []Request
}

// Result reports what happened during one run.
type Result struct {
	Strategy   domain.Strategy
	ColdStarts int64
	WarmStarts int64
	Queued     int64
}

// Run drives one pass of cfg.Requests against fresh pool state and reports
// the resulting counters.
func Run(cfg Config) Result {
	clk := clock.NewStepped(0)
	rt := backend.NewStub()
	registry := pool.NewRegistry(cfg.DefaultLimit)
	ctx := context.Background()

	var res Result
	res.Strategy = cfg.Strategy

	byTick := make(map[int64][]Request)
	for _, r := range cfg.Requests {
		byTick[r.ArrivalTime] = append(byTick[r.ArrivalTime], r)
	}

	for t := int64(0); t < cfg.SimulationEnd; t++ {
		clk.Set(t)

		for _, p := range registry.All() {
			tickPool(ctx, p, rt, t, cfg.WarmTime, cfg.ExecutionTime, &res)
		}

		for _, req := range byTick[t] {
			admit(ctx, registry.GetOrCreate(req.FunctionID), rt, t, cfg.ExecutionTime, cfg.Strategy, &res)
		}
	}

	return res
}

// tickPool applies one tick's worth of completion and expiry transitions to
// a single pool, matching the reference ordering: a container whose
// execution ends this tick either immediately picks up a queued request for
// the same function (continuing warm) or goes idle; only then do idle
// containers get checked for expiry.
func tickPool(ctx context.Context, p *pool.FunctionPool, rt backend.Runtime, now, warmTime, execTime int64, res *Result) {
	p.Lock()
	for _, c := range p.ContainersLocked() {
		if c.State != domain.StateExecuting || c.ExecutionEndTime != now {
			continue
		}
		if req := p.DequeueLocked(); req != nil {
			c.MarkExecuting(now + execTime)
			res.WarmStarts++
			continue
		}
		c.MarkIdle(now)
	}

	var expired []*domain.Container
	for _, c := range p.ContainersLocked() {
		if c.Expired(now, warmTime) {
			expired = append(expired, c)
		}
	}
	for _, c := range expired {
		p.RemoveLocked(c.ID)
		c.State = domain.StateReleased
	}
	p.Unlock()

	for _, c := range expired {
		_ = rt.Stop(ctx, c.ID)
	}
}

// admit runs the scheduler's admission algorithm (steps 1-6 of the
// documented design) for one arriving request: warm reuse, cold start, or
// FCFS queueing at the concurrency limit.
func admit(ctx context.Context, p *pool.FunctionPool, rt backend.Runtime, now, execTime int64, strategy domain.Strategy, res *Result) {
	p.Lock()
	if c := p.PickWarmLocked(strategy, now+execTime); c != nil {
		p.Unlock()
		res.WarmStarts++
		return
	}

	if p.CountLocked()+p.StartingLocked() < p.Limit {
		p.ReserveStartLocked()
		p.Unlock()

		id, endpoint, err := rt.Launch(ctx, p.FunctionID, "")
		p.Lock()
		p.ReleaseStartLocked()
		if err != nil {
			p.Unlock()
			return
		}
		p.InsertLocked(domain.NewExecuting(id, p.FunctionID, endpoint, now+execTime))
		p.Unlock()
		res.ColdStarts++
		return
	}

	req := &pool.Request{FunctionID: p.FunctionID}
	p.EnqueueLocked(req)
	p.Unlock()
	res.Queued++
}

// Compare runs the same trace once per strategy and returns both results,
// mirroring the original research script's two-pass run-then-compare shape.
func Compare(base Config) (lcs, mru Result) {
	lcsCfg := base
	lcsCfg.Strategy = domain.StrategyLCS
	mruCfg := base
	mruCfg.Strategy = domain.StrategyMRU
	return Run(lcsCfg), Run(mruCfg)
}

// Improvement returns the percentage fewer cold starts lcs incurred
// relative to mru, matching the comparison printed by the original script.
func Improvement(lcs, mru Result) float64 {
	if mru.ColdStarts == 0 {
		return 0
	}
	return 100 * float64(mru.ColdStarts-lcs.ColdStarts) / float64(mru.ColdStarts)
}
