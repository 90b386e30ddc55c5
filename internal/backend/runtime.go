// Package backend provides the Runtime abstraction the scheduler launches,
// invokes, stops, and probes containers through, plus a Docker-CLI-backed
// production implementation and an in-memory stub for tests and the
// simulation harness.
package backend

import "context"

// Response is what an invocation returns on success.
type Response struct {
	Output     []byte
	DurationMs int64
}

// Runtime is the external collaborator that actually runs function code.
// Nothing in the pool or scheduler package depends on a concrete backend;
// everything goes through this interface.
type Runtime interface {
	// Launch starts a new instance of the given function's image and
	// returns its id and an endpoint the scheduler can later Invoke.
	Launch(ctx context.Context, functionID, image string) (id, endpoint string, err error)
	// Invoke sends payload to endpoint and blocks until the function returns.
	Invoke(ctx context.Context, endpoint string, payload []byte) (Response, error)
	// Stop tears down the instance with the given id.
	Stop(ctx context.Context, id string) error
	// Probe is a liveness check used to confirm a freshly launched instance
	// is ready to receive invocations before the scheduler hands out work.
	Probe(ctx context.Context, endpoint string) error
}
