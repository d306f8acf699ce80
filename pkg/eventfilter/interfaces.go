package eventfilter

import "context"

// WorkerStats is a snapshot of a FilterWorker's activity counters, used
// for the admin surface and CLI introspection. spec.md §7 names the
// DeliveryDrop and ExtractionError counters but specifies no read
// operation for them; this supplements that gap.
type WorkerStats struct {
	EventType        string
	SubscriberCount  int
	SubscriptionCount int
	EventsMatched    int64
	EventsDelivered  int64
	DeliveryDrops    int64
	ExtractionErrors int64
}

// FilterWorker is the per-event-type actor that holds subscriptions and
// performs matching. All methods are safe for concurrent use; the
// implementation serializes them onto a single mailbox per spec.md §5.
type FilterWorker interface {
	// EventType returns the event type this Worker indexes.
	EventType() string

	// RefreshSubscriptions replaces subscriber's entire subscription set
	// on this Worker with subs (which may be empty, meaning "clear").
	// done is signaled exactly once after the replacement is applied.
	RefreshSubscriptions(ctx context.Context, subscriber SubscriberEndpoint, subs []Subscription, done chan<- struct{})

	// ReloadConfiguration atomically replaces the Worker's FieldMap.
	// It is synchronous and must return promptly; the caller may impose
	// a deadline via ctx.
	ReloadConfiguration(ctx context.Context, fieldMap FieldMap) error

	// PushEvent is the ingress path: it evaluates event against all
	// current subscriptions and delivers to matching subscribers.
	PushEvent(ctx context.Context, event *Event)

	// Stats returns a snapshot of this Worker's activity counters.
	Stats() WorkerStats

	// Shutdown stops the Worker's mailbox loop. Idempotent.
	Shutdown(ctx context.Context) error
}

// Registry is the per-node event_type -> FilterWorker lookup. Writes are
// serialized by the Supervisor; lookups are safe for concurrent readers.
type Registry interface {
	// Register records worker as the live Worker for eventType.
	Register(eventType string, worker FilterWorker)

	// Lookup returns the live Worker for eventType, if any.
	Lookup(eventType string) (FilterWorker, bool)

	// Unregister removes the entry for eventType, if present.
	Unregister(eventType string)

	// EventTypes returns all event types with a registered Worker.
	EventTypes() []string
}

// SupervisorHandle identifies one live Supervisor in the cluster-wide
// discovery group.
type SupervisorHandle interface {
	// NodeID returns the identifier of the node this Supervisor runs on.
	NodeID() string

	// Address returns the Supervisor's admin-reachable address.
	Address() string
}

// FilterSupervisor is the per-node coordinator that finds or starts
// Workers, brokers subscription refreshes, and manages the ExtractorMap.
type FilterSupervisor interface {
	// RefreshSubscriptions computes newSubs grouped by event type,
	// finds or starts a Worker per group, and forwards the refresh.
	// For every event type present in prevSubs but absent from newSubs,
	// it clears that subscriber on that type's Worker (if one exists).
	// This call is asynchronous: it does not wait for the Workers'
	// done signals before returning.
	RefreshSubscriptions(ctx context.Context, subscriber SubscriberEndpoint, newSubs, prevSubs []Subscription) error

	// ReloadConfig reloads the ExtractorMap from the configured source
	// and pushes the new FieldMap to every live Worker. It is
	// synchronous. If the source fails to load, parse or validate, the
	// previous ExtractorMap continues to operate and the error is
	// returned. A Worker that fails to apply the new FieldMap within the
	// deadline is logged only: the swap is not rolled back and no error
	// is returned.
	ReloadConfig(ctx context.Context) error

	// Processes enumerates all Supervisor endpoints in the cluster-wide
	// discovery group.
	Processes(ctx context.Context) ([]SupervisorHandle, error)

	// Start begins the Supervisor's operation.
	Start(ctx context.Context) error

	// Close stops the Supervisor and all Workers it owns.
	Close() error
}
