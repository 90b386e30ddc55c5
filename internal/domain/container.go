// Package domain holds the value types shared by the pool, scheduler, and
// simulation packages: container state, selection strategy, and the error
// kinds the scheduler returns.
package domain

// State is a position in a container's lifecycle.
type State string

const (
	// StateExecuting means the container is currently running an invocation.
	StateExecuting State = "executing"
	// StateIdle means the container is warm and available for reuse.
	StateIdle State = "idle"
	// StateReleased is terminal: the runtime has been asked to stop the container.
	StateReleased State = "released"
)

// noIdleTime is the sentinel last-used value for a container that is not idle.
const noIdleTime = -1

// Container is one worker instance bound permanently to a single function.
type Container struct {
	ID         string
	FunctionID string
	Endpoint   string
	State      State

	// ExecutionEndTime is meaningful only to the simulation harness, which
	// advances an integer clock instead of waiting on real execution.
	ExecutionEndTime int64

	// LastUsedTime is the clock reading at which the container most recently
	// became idle. It holds noIdleTime whenever State != StateIdle.
	LastUsedTime int64
}

// NewExecuting returns a container freshly created by a cold start.
func NewExecuting(id, functionID, endpoint string, executionEndTime int64) *Container {
	return &Container{
		ID:               id,
		FunctionID:       functionID,
		Endpoint:         endpoint,
		State:            StateExecuting,
		ExecutionEndTime: executionEndTime,
		LastUsedTime:     noIdleTime,
	}
}

// MarkIdle transitions the container to idle, recording when it went idle.
func (c *Container) MarkIdle(now int64) {
	c.State = StateIdle
	c.LastUsedTime = now
}

// MarkExecuting transitions an idle container back to executing for reuse.
func (c *Container) MarkExecuting(executionEndTime int64) {
	c.State = StateExecuting
	c.ExecutionEndTime = executionEndTime
	c.LastUsedTime = noIdleTime
}

// Expired reports whether an idle container has sat past warmTime at now.
func (c *Container) Expired(now, warmTime int64) bool {
	return c.State == StateIdle && now >= c.LastUsedTime+warmTime
}
