package pool

import "sync"

// Registry lazily creates and holds one FunctionPool per function id, the
// way the scheduler's FUNCTION_POOLS map did in the system this was
// modeled on, but safe for concurrent access from many goroutines.
type Registry struct {
	mu           sync.Mutex
	pools        map[string]*FunctionPool
	defaultLimit int
}

// NewRegistry returns an empty registry. defaultLimit is applied to pools
// created lazily on first invocation for a function.
func NewRegistry(defaultLimit int) *Registry {
	return &Registry{
		pools:        make(map[string]*FunctionPool),
		defaultLimit: defaultLimit,
	}
}

// GetOrCreate returns the pool for functionID, creating it with the
// registry's default limit if this is the first time it's been seen.
func (r *Registry) GetOrCreate(functionID string) *FunctionPool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pools[functionID]; ok {
		return p
	}
	p := NewFunctionPool(functionID, r.defaultLimit)
	r.pools[functionID] = p
	return p
}

// All returns every pool currently known, for the reaper sweep and stats dump.
func (r *Registry) All() []*FunctionPool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*FunctionPool, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p)
	}
	return out
}
