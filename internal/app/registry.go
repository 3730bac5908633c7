package app

import (
	"sync"
	"time"
)

// Handle is the part of a child process shutdown needs.
type Handle interface {
	PID() int
	Terminate() error
	Kill() error
	WaitTimeout(d time.Duration) bool
}

// Registry holds the handles spawned during one supervisor run, in spawn
// order. It is owned by a single Supervisor and never shared.
type Registry struct {
	mu      sync.Mutex
	handles []Handle
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = append(r.handles, h)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Drain returns every handle and empties the registry.
func (r *Registry) Drain() []Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := r.handles
	r.handles = nil
	return handles
}
