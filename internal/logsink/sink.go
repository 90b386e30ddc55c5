// Package logsink persists a best-effort audit trail of completed
// invocations (function, strategy, cold/warm, duration) so the LCS-vs-MRU
// comparison can be reconstructed from production traffic after the fact.
// A failed Save is logged by the scheduler and dropped; write errors from
// the Postgres sink's timer-driven flushes are dropped without logging.
// Neither affects the scheduler's decision path.
package logsink

import (
	"context"
	"time"
)

// Record is one completed invocation.
type Record struct {
	ID          string
	FunctionID  string
	ContainerID string
	Strategy    string
	ColdStart   bool
	Success     bool
	DurationMs  int64
	At          time.Time
}

// Sink persists Records. Implementations must not block the caller for
// long; Save is typically invoked from its own goroutine.
type Sink interface {
	Save(ctx context.Context, r Record) error
	SaveBatch(ctx context.Context, rs []Record) error
	Close(ctx context.Context) error
}

// Noop discards every record; used by tests and by the daemon when no
// Postgres DSN is configured.
type Noop struct{}

func (Noop) Save(context.Context, Record) error       { return nil }
func (Noop) SaveBatch(context.Context, []Record) error { return nil }
func (Noop) Close(context.Context) error              { return nil }

// Multi fans a record out to several sinks, returning the first error.
type Multi struct {
	Sinks []Sink
}

func (m Multi) Save(ctx context.Context, r Record) error {
	var firstErr error
	for _, s := range m.Sinks {
		if err := s.Save(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) SaveBatch(ctx context.Context, rs []Record) error {
	var firstErr error
	for _, s := range m.Sinks {
		if err := s.SaveBatch(ctx, rs); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m Multi) Close(ctx context.Context) error {
	var firstErr error
	for _, s := range m.Sinks {
		if err := s.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
