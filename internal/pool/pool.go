// Package pool implements the per-function container set: the bounded
// concurrency pool, its FIFO overflow queue, and the cold-start admission
// accounting that keeps |containers|+starting <= limit even though Launch
// runs with the pool mutex released.
//
// Methods without the Locked suffix take the pool's mutex themselves;
// methods ending in Locked assume the caller already holds it via Lock.
package pool

import (
	"sync"

	"github.com/lindqvist/warmsched/internal/domain"
)

// Request is one pending invocation waiting for a container.
type Request struct {
	FunctionID string
	Payload    []byte
	// Done, when non-nil, receives the container the drainer ran this
	// request on. The send does not block, so only a buffered channel
	// observes it; the HTTP front-end does not read it.
	Done chan *domain.Container
}

// FunctionPool is the full mutable state for one function: its containers,
// its overflow queue, and its concurrency limit.
type FunctionPool struct {
	mu sync.Mutex

	FunctionID string
	Limit      int

	containers map[string]*domain.Container
	queue      []*Request
	starting   int
}

// NewFunctionPool creates an empty pool for one function.
func NewFunctionPool(functionID string, limit int) *FunctionPool {
	return &FunctionPool{
		FunctionID: functionID,
		Limit:      limit,
		containers: make(map[string]*domain.Container),
	}
}

// Count returns the number of containers currently held (busy + idle),
// not counting reserved-but-not-yet-launched slots.
func (p *FunctionPool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.containers)
}

// Lock acquires the pool's mutex. The Scheduler holds it across the
// warm-pick / admission decision and releases it before any Runtime call.
func (p *FunctionPool) Lock() { p.mu.Lock() }

// Unlock releases the pool's mutex.
func (p *FunctionPool) Unlock() { p.mu.Unlock() }

// CountLocked is Count for callers that already hold the mutex.
func (p *FunctionPool) CountLocked() int {
	return len(p.containers)
}

// StartingLocked returns the number of cold starts that have reserved a
// slot but not yet completed Launch.
func (p *FunctionPool) StartingLocked() int {
	return p.starting
}

// ReserveStartLocked increments the starting counter, bracketing an
// about-to-happen unlocked Runtime.Launch call.
func (p *FunctionPool) ReserveStartLocked() {
	p.starting++
}

// ReleaseStartLocked decrements the starting counter once Launch has
// either succeeded (and the container was inserted) or failed.
func (p *FunctionPool) ReleaseStartLocked() {
	p.starting--
}

// InsertLocked adds a freshly created container to the pool.
func (p *FunctionPool) InsertLocked(c *domain.Container) {
	p.containers[c.ID] = c
}

// RemoveLocked deletes a container record, e.g. after the reaper stops it.
func (p *FunctionPool) RemoveLocked(id string) {
	delete(p.containers, id)
}

// EnqueueLocked appends a request to the FIFO overflow queue.
func (p *FunctionPool) EnqueueLocked(r *Request) {
	p.queue = append(p.queue, r)
}

// DequeueLocked pops the oldest queued request, or nil if empty.
func (p *FunctionPool) DequeueLocked() *Request {
	if len(p.queue) == 0 {
		return nil
	}
	r := p.queue[0]
	p.queue = p.queue[1:]
	return r
}

// IdleEmptyLocked reports whether no container in the pool is idle.
func (p *FunctionPool) IdleEmptyLocked() bool {
	return len(p.idleLocked()) == 0
}

// ContainersLocked returns all containers currently held, for the reaper.
func (p *FunctionPool) ContainersLocked() []*domain.Container {
	out := make([]*domain.Container, 0, len(p.containers))
	for _, c := range p.containers {
		out = append(out, c)
	}
	return out
}

// PickWarmLocked returns an idle container chosen by strategy, marking it
// executing, or nil if none is idle. Caller must hold the mutex.
func (p *FunctionPool) PickWarmLocked(strategy domain.Strategy, executionEndTime int64) *domain.Container {
	idle := p.idleLocked()
	i := strategy.Pick(idle)
	if i == -1 {
		return nil
	}
	c := idle[i]
	c.MarkExecuting(executionEndTime)
	return c
}

func (p *FunctionPool) idleLocked() []*domain.Container {
	var idle []*domain.Container
	for _, c := range p.containers {
		if c.State == domain.StateIdle {
			idle = append(idle, c)
		}
	}
	return idle
}

// QueueDepth returns the number of requests currently waiting.
func (p *FunctionPool) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Snapshot returns a point-in-time copy of pool occupancy for stats/tests.
type Snapshot struct {
	FunctionID string
	Containers int
	Idle       int
	Queued     int
	Limit      int
}

// Snapshot reports the pool's current occupancy.
func (p *FunctionPool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	idle := 0
	for _, c := range p.containers {
		if c.State == domain.StateIdle {
			idle++
		}
	}
	return Snapshot{
		FunctionID: p.FunctionID,
		Containers: len(p.containers),
		Idle:       idle,
		Queued:     len(p.queue),
		Limit:      p.Limit,
	}
}
