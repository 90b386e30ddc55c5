package scheduler

import (
	"context"

	"github.com/google/uuid"

	"github.com/lindqvist/warmsched/internal/domain"
	"github.com/lindqvist/warmsched/internal/metrics"
	"github.com/lindqvist/warmsched/internal/pool"
)

// Drain consumes p's overflow queue onto the just-freed container c,
// iteratively rather than recursively so a long burst of queued requests
// for one function never grows the call stack.
func (s *Scheduler) Drain(ctx context.Context, p *pool.FunctionPool, c *domain.Container) {
	for {
		p.Lock()
		req := p.DequeueLocked()
		if req == nil {
			c.MarkIdle(s.clock.Now())
			p.Unlock()
			return
		}
		p.Unlock()

		resp, err := s.runtime.Invoke(ctx, c.Endpoint, req.Payload)
		s.stats.WarmStart(req.FunctionID)
		if m := metrics.Current(); m != nil {
			m.RecordWarmStart(req.FunctionID)
		}
		s.record(uuid.NewString(), req.FunctionID, c.ID, false, err == nil, resp.DurationMs)

		if req.Done != nil {
			select {
			case req.Done <- c:
			default:
			}
		}

		if err != nil {
			p.Lock()
			c.MarkIdle(s.clock.Now())
			p.Unlock()
			return
		}
		// Loop: check whether another request arrived while this one ran.
	}
}
