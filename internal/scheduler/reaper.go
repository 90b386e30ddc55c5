package scheduler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lindqvist/warmsched/internal/clock"
	"github.com/lindqvist/warmsched/internal/domain"
	"github.com/lindqvist/warmsched/internal/pool"
)

// Reaper periodically releases idle containers that have sat past WarmTime,
// across every function pool, without ever holding more than one pool's
// mutex at a time.
type Reaper struct {
	sched    *Scheduler
	warmTime int64
	sleep    time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

// NewReaper builds a Reaper for sched. WarmTime and the clock are taken
// from sched so the reaper and scheduler always agree on "now".
func NewReaper(sched *Scheduler, sleep time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{sched: sched, warmTime: sched.cfg.WarmTime, sleep: sleep, clock: sched.clock, logger: logger}
}

// Run blocks, sweeping every JANITOR_SLEEP interval until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sleep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}

// Tick runs a single sweep, exported so a caller can drive expiration
// deterministically instead of waiting on a real ticker.
func (r *Reaper) Tick(ctx context.Context) {
	now := r.clock.Now()
	for _, p := range r.sched.pools.All() {
		r.sweepPool(ctx, p, now)
	}
}

func (r *Reaper) sweepPool(ctx context.Context, p *pool.FunctionPool, now int64) {
	p.Lock()
	var expired []*domain.Container
	for _, c := range p.ContainersLocked() {
		if c.Expired(now, r.warmTime) {
			expired = append(expired, c)
		}
	}
	for _, c := range expired {
		p.RemoveLocked(c.ID)
		c.State = domain.StateReleased
	}
	p.Unlock()

	if len(expired) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range expired {
		c := c
		g.Go(func() error {
			if err := r.sched.runtime.Stop(gctx, c.ID); err != nil {
				if r.logger != nil {
					r.logger.Warn("reaper stop failed", "container_id", c.ID, "error", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
