// Package workerregistry provides the per-node event_type -> FilterWorker
// lookup described in spec.md §4.E. It is a single-writer, concurrent-read
// map: only the Supervisor calls Register/Unregister, while the ingress
// path calls Lookup concurrently from many goroutines.
package workerregistry

import (
	"sync"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

// Registry implements eventfilter.Registry with a RWMutex-guarded map,
// the same concurrency shape as the teacher's in-memory routing table.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]eventfilter.FilterWorker
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		workers: make(map[string]eventfilter.FilterWorker),
	}
}

// Register records worker as the live Worker for eventType. At most one
// live Worker may be registered per event type per node; a second
// Register call for the same type replaces the prior entry.
func (r *Registry) Register(eventType string, worker eventfilter.FilterWorker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[eventType] = worker
}

// Lookup returns the live Worker for eventType, if any.
func (r *Registry) Lookup(eventType string) (eventfilter.FilterWorker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	worker, ok := r.workers[eventType]
	return worker, ok
}

// Unregister removes the entry for eventType, if present.
func (r *Registry) Unregister(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workers, eventType)
}

// EventTypes returns all event types with a registered Worker.
func (r *Registry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.workers))
	for eventType := range r.workers {
		types = append(types, eventType)
	}
	return types
}

// Verify that Registry implements eventfilter.Registry at compile time.
var _ eventfilter.Registry = (*Registry)(nil)
