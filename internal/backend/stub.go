package backend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Stub is an in-memory Runtime for tests and the simulation harness: Launch
// and Invoke return instantly with no real process behind them.
type Stub struct {
	mu       sync.Mutex
	next     atomic.Int64
	stopped  map[string]bool
	FailLaunch func(functionID string) bool
	FailInvoke func(endpoint string) bool
}

// NewStub returns a ready-to-use Stub Runtime.
func NewStub() *Stub {
	return &Stub{stopped: make(map[string]bool)}
}

// Launch fabricates an id and endpoint; no process is actually started.
func (s *Stub) Launch(ctx context.Context, functionID, image string) (string, string, error) {
	if s.FailLaunch != nil && s.FailLaunch(functionID) {
		return "", "", fmt.Errorf("stub: launch failed for %s", functionID)
	}
	n := s.next.Add(1)
	id := fmt.Sprintf("%s-%d", functionID, n)
	return id, id + ":endpoint", nil
}

// Invoke returns immediately, echoing payload as the output with a zero duration.
func (s *Stub) Invoke(ctx context.Context, endpoint string, payload []byte) (Response, error) {
	if s.FailInvoke != nil && s.FailInvoke(endpoint) {
		return Response{}, fmt.Errorf("stub: invoke failed for %s", endpoint)
	}
	return Response{Output: payload, DurationMs: 0}, nil
}

// Stop records the id as stopped.
func (s *Stub) Stop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped[id] = true
	return nil
}

// Probe always succeeds; the stub has no boot delay to wait out.
func (s *Stub) Probe(ctx context.Context, endpoint string) error {
	return nil
}

// Stopped reports whether Stop was called for id, for test assertions.
func (s *Stub) Stopped(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped[id]
}
