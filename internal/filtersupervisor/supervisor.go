// Package filtersupervisor implements the per-node coordinator that
// finds or starts Filter Workers, brokers subscription refreshes across
// event types, and owns the hot-reloadable ExtractorMap. It is
// orchestration-only: all matching happens inside the Workers it
// supervises. Grounded on the teacher's GRPCMeshNode, which plays the
// analogous orchestrating role over EventLog/RoutingTable/PeerLink.
package filtersupervisor

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/eventfilter-go/eventfilter/internal/discovery"
	"github.com/eventfilter-go/eventfilter/internal/extractorconfig"
	"github.com/eventfilter-go/eventfilter/internal/filterworker"
	"github.com/eventfilter-go/eventfilter/internal/workerregistry"
	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

// Supervisor implements eventfilter.FilterSupervisor.
type Supervisor struct {
	mu     sync.Mutex
	config *Config
	logger *log.Logger

	registry  *workerregistry.Registry
	discovery discovery.Discovery

	extractorMap eventfilter.ExtractorMap

	started bool
	closed  bool
}

// Option configures a Supervisor at construction time.
type Option func(*Supervisor)

// WithLogger overrides the Supervisor's logger (default: log.Default()).
func WithLogger(logger *log.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithDiscovery overrides the discovery.Discovery implementation used
// to enumerate peer Supervisor processes (default: an empty
// discovery.StaticDiscovery).
func WithDiscovery(d discovery.Discovery) Option {
	return func(s *Supervisor) { s.discovery = d }
}

// New creates a Supervisor from config. It loads the initial
// ExtractorMap eagerly, so a malformed source fails construction rather
// than surfacing only on first use.
func New(config *Config, opts ...Option) (*Supervisor, error) {
	if config == nil {
		return nil, fmt.Errorf("filtersupervisor: config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("filtersupervisor: invalid config: %w", err)
	}
	config.setDefaults()

	extractorMap, err := extractorconfig.Load(config.ExtractorConfigSource)
	if err != nil {
		return nil, fmt.Errorf("filtersupervisor: loading extractor config: %w", err)
	}

	s := &Supervisor{
		config:       config,
		logger:       log.Default(),
		registry:     workerregistry.New(),
		discovery:    discovery.NewStaticDiscovery(nil),
		extractorMap: extractorMap,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start begins the Supervisor's operation. Idempotent.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return eventfilter.ErrSupervisorClosed
	}
	s.started = true
	return nil
}

// RefreshSubscriptions groups newSubs by event type, finds or starts a
// Worker for each group, and forwards the replacement. For every event
// type present in prevSubs but absent from newSubs, it clears
// subscriber's entry on that type's Worker, if the Worker still exists.
// Per spec.md §4.B, this call does not wait for Workers to finish
// applying the refresh before returning.
func (s *Supervisor) RefreshSubscriptions(ctx context.Context, subscriber eventfilter.SubscriberEndpoint, newSubs, prevSubs []eventfilter.Subscription) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return eventfilter.ErrSupervisorClosed
	}
	extractorMap := s.extractorMap
	s.mu.Unlock()

	byType := make(map[string][]eventfilter.Subscription)
	for _, sub := range newSubs {
		byType[sub.EventType] = append(byType[sub.EventType], sub)
	}

	prevTypes := make(map[string]struct{})
	for _, sub := range prevSubs {
		prevTypes[sub.EventType] = struct{}{}
	}

	for eventType, subs := range byType {
		worker, err := s.findOrStartWorker(eventType, extractorMap)
		if err != nil {
			return err
		}
		worker.RefreshSubscriptions(ctx, subscriber, subs, nil)
		delete(prevTypes, eventType)
	}

	// Event types dropped entirely in this refresh: clear the
	// subscriber on their Workers, if those Workers are still alive.
	for eventType := range prevTypes {
		if worker, ok := s.registry.Lookup(eventType); ok {
			worker.RefreshSubscriptions(ctx, subscriber, nil, nil)
		}
	}

	return nil
}

// ReloadConfig reloads the ExtractorMap from config.ExtractorConfigSource
// and pushes the new FieldMap to every live Worker, bounding each push
// with config.ReloadDeadline. On any load failure the previous
// ExtractorMap is left untouched and the failure is returned. Per-worker
// push failures are logged and do not roll back the already-applied
// ExtractorMap swap; spec.md's atomicity guarantee concerns the load
// step, not delivery to already-started Workers.
func (s *Supervisor) ReloadConfig(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return eventfilter.ErrSupervisorClosed
	}
	source := s.config.ExtractorConfigSource
	deadline := s.config.ReloadDeadline
	s.mu.Unlock()

	newExtractorMap, err := extractorconfig.Load(source)
	if err != nil {
		return fmt.Errorf("filtersupervisor: reload: %w", err)
	}

	s.mu.Lock()
	s.extractorMap = newExtractorMap
	s.mu.Unlock()

	for _, eventType := range s.registry.EventTypes() {
		worker, ok := s.registry.Lookup(eventType)
		if !ok {
			continue
		}
		reloadCtx, cancel := context.WithTimeout(ctx, deadline)
		err := worker.ReloadConfiguration(reloadCtx, newExtractorMap.ForEventType(eventType))
		cancel()
		if err != nil {
			s.logger.Printf("filtersupervisor: worker[%s] reload failed: %v", eventType, err)
		}
	}

	return nil
}

// Processes enumerates all Supervisor endpoints in the discovery group.
func (s *Supervisor) Processes(ctx context.Context) ([]eventfilter.SupervisorHandle, error) {
	return s.discovery.FindSupervisors(ctx)
}

// WorkerStats returns the activity snapshot for eventType's Worker, if
// one is currently registered.
func (s *Supervisor) WorkerStats(eventType string) (eventfilter.WorkerStats, bool) {
	worker, ok := s.registry.Lookup(eventType)
	if !ok {
		return eventfilter.WorkerStats{}, false
	}
	return worker.Stats(), true
}

// LookupWorker returns the live Worker for eventType, if one is
// registered. This is the ingress contract spec.md §6 describes
// ("callers locate a Worker via Registry.lookup(event_type); if
// absent, the event is dropped") exposed for whatever sits in front of
// the Supervisor on the ingress path.
func (s *Supervisor) LookupWorker(eventType string) (eventfilter.FilterWorker, bool) {
	return s.registry.Lookup(eventType)
}

// EventTypes returns the event types with a currently registered Worker.
func (s *Supervisor) EventTypes() []string {
	return s.registry.EventTypes()
}

// Close stops the Supervisor and every Worker it owns. Idempotent.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.started = false
	s.mu.Unlock()

	ctx := context.Background()
	for _, eventType := range s.registry.EventTypes() {
		if worker, ok := s.registry.Lookup(eventType); ok {
			if err := worker.Shutdown(ctx); err != nil {
				s.logger.Printf("filtersupervisor: worker[%s] shutdown: %v", eventType, err)
			}
		}
		s.registry.Unregister(eventType)
	}
	return nil
}

// findOrStartWorker returns the live Worker for eventType, starting one
// seeded with extractorMap's current FieldMap if none exists yet. The
// whole check-then-create sequence runs under s.mu so two concurrent
// refreshes for a not-yet-started event type cannot each start a
// Worker and orphan one of them.
func (s *Supervisor) findOrStartWorker(eventType string, extractorMap eventfilter.ExtractorMap) (eventfilter.FilterWorker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if worker, ok := s.registry.Lookup(eventType); ok {
		return worker, nil
	}

	worker := filterworker.New(eventType, extractorMap.ForEventType(eventType),
		filterworker.WithLogger(s.logger),
		filterworker.WithIdleTTL(s.config.WorkerIdleTTL),
		filterworker.WithOnTerminate(s.registry.Unregister),
	)
	s.registry.Register(eventType, worker)
	return worker, nil
}

var _ eventfilter.FilterSupervisor = (*Supervisor)(nil)
