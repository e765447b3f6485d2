package worker

import (
	"context"
	"sync"
)

// Lease identifies one successful Acquire. Only the holder of the current
// lease can release a job's registration.
type Lease uint64

type registration struct {
	lease  Lease
	cancel context.CancelFunc
}

// Registry maps job ids to the cancel func of their running loop.
type Registry struct {
	mu     sync.Mutex
	active map[string]registration
	next   Lease
}

func NewRegistry() *Registry {
	return &Registry{active: make(map[string]registration)}
}

// Acquire registers jobID if no loop holds it. Test-and-set under one lock.
func (r *Registry) Acquire(jobID string, cancel context.CancelFunc) (Lease, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[jobID]; busy {
		return 0, false
	}
	r.next++
	r.active[jobID] = registration{lease: r.next, cancel: cancel}
	return r.next, true
}

// Release drops the registration if lease still owns it.
func (r *Registry) Release(jobID string, lease Lease) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.active[jobID]
	if !ok || reg.lease != lease {
		return false
	}
	delete(r.active, jobID)
	return true
}

// Cancel fires the loop's token. The loop releases its own registration on exit.
func (r *Registry) Cancel(jobID string) bool {
	r.mu.Lock()
	reg, ok := r.active[jobID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	if reg.cancel != nil {
		reg.cancel()
	}
	return true
}

func (r *Registry) Active(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[jobID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
