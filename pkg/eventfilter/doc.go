// Package eventfilter provides interfaces and value types for the event
// filter supervision and matching subsystem.
//
// This package defines the core abstractions of the EventFilter gateway:
//   - Event: an incoming typed event with a payload and headers
//   - Subscription: a subscriber's interest in an event type, constrained
//     by equality on extracted payload fields
//   - SubscriberEndpoint: an addressable, liveness-observable delivery
//     target
//   - ExtractorMap / FieldMap / ExtractorSpec: the per-event-type map of
//     indexable payload fields
//   - FilterWorker: the per-event-type actor that holds subscriptions and
//     performs matching
//   - FilterSupervisor: the per-node coordinator that finds/starts
//     Workers and manages the ExtractorMap
//   - Registry: the event_type -> Worker lookup
//
// Architecture:
//  1. A caller posts RefreshSubscriptions(subscriber, newSubs, prevSubs)
//     to the Supervisor.
//  2. The Supervisor groups newSubs by event type, finds or starts a
//     FilterWorker per type, and forwards each group.
//  3. The ingress path looks up a Worker by event type in the Registry
//     and hands it events; the Worker matches and delivers.
//  4. ReloadConfig atomically swaps the ExtractorMap and pushes the new
//     FieldMap to every live Worker.
//
// The interfaces use Go idioms:
//   - context.Context for cancellation and deadlines
//   - Explicit error returns following Go conventions
//   - Channels for the Worker's asynchronous mailbox
//
// Example usage:
//
//	sup, err := filtersupervisor.New(cfg)
//	if err != nil {
//		return err
//	}
//	// Returns once the refresh is queued on each Worker; it takes no
//	// completion signal and does not report when Workers have applied it.
//	err = sup.RefreshSubscriptions(ctx, subscriber, newSubs, prevSubs)
//
//	worker, ok := sup.LookupWorker("order.created")
//	if ok {
//		worker.PushEvent(ctx, event)
//	}
//
// This package is part of the EventFilter system for typed event routing
// to dynamic populations of subscribers.
package eventfilter
