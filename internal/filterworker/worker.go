// Package filterworker implements the per-event-type actor described in
// spec.md §4.C: it holds the current subscription set for one event
// type, indexes it, and matches incoming events against it.
package filterworker

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

// DefaultIdleTTL is the default duration a Worker waits with zero
// subscriptions before terminating itself.
const DefaultIdleTTL = 5 * time.Minute

// DefaultMailboxSize bounds the Worker's control-message channels so a
// slow caller cannot grow the queue without limit.
const DefaultMailboxSize = 64

type refreshMsg struct {
	subscriber eventfilter.SubscriberEndpoint
	subs       []eventfilter.Subscription
	done       chan<- struct{}
}

type reloadMsg struct {
	fieldMap eventfilter.FieldMap
	resp     chan<- error
}

// Worker implements eventfilter.FilterWorker as a single goroutine
// owning all mutable state, serializing every message per spec.md §5's
// per-worker invariant. It is grounded on the teacher's
// handleIncomingPeerEvents select-over-channels mailbox loop
// (internal/meshnode/node.go), generalized into one loop per instance.
type Worker struct {
	eventType string
	logger    *log.Logger
	idleTTL   time.Duration

	refreshCh  chan refreshMsg
	reloadCh   chan reloadMsg
	pushCh     chan *eventfilter.Event
	deathCh    chan string
	shutdownCh chan chan struct{}
	stopped    chan struct{}

	onTerminate func(eventType string)

	// State owned exclusively by run(); never touched from other
	// goroutines.
	fieldMap     eventfilter.FieldMap
	bySubscriber map[string]map[string]eventfilter.Subscription
	endpoints    map[string]eventfilter.SubscriberEndpoint
	watchTokens  map[string]string
	index        *invertedIndex

	subscriberCount   atomic.Int64
	subscriptionCount atomic.Int64
	eventsMatched     atomic.Int64
	eventsDelivered   atomic.Int64
	deliveryDrops     atomic.Int64
	extractionErrors  atomic.Int64
}

// Option configures a Worker at construction time.
type Option func(*Worker)

// WithLogger overrides the Worker's logger (default: log.Default()).
func WithLogger(logger *log.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithIdleTTL overrides the idle-TTL before a subscription-less Worker
// self-terminates (default: DefaultIdleTTL).
func WithIdleTTL(ttl time.Duration) Option {
	return func(w *Worker) { w.idleTTL = ttl }
}

// WithOnTerminate registers a callback invoked (from the Worker's own
// goroutine, just before it exits) when the Worker terminates, whether
// by idle-TTL expiry or explicit Shutdown. The Supervisor uses this to
// remove the Worker's Registry entry.
func WithOnTerminate(fn func(eventType string)) Option {
	return func(w *Worker) { w.onTerminate = fn }
}

// New creates a Worker for eventType with the given initial FieldMap
// and starts its mailbox loop.
func New(eventType string, fieldMap eventfilter.FieldMap, opts ...Option) *Worker {
	w := &Worker{
		eventType:    eventType,
		logger:       log.Default(),
		idleTTL:      DefaultIdleTTL,
		refreshCh:    make(chan refreshMsg, DefaultMailboxSize),
		reloadCh:     make(chan reloadMsg, 1),
		pushCh:       make(chan *eventfilter.Event, DefaultMailboxSize),
		deathCh:      make(chan string, DefaultMailboxSize),
		shutdownCh:   make(chan chan struct{}, 1),
		stopped:      make(chan struct{}),
		fieldMap:     fieldMap,
		bySubscriber: make(map[string]map[string]eventfilter.Subscription),
		endpoints:    make(map[string]eventfilter.SubscriberEndpoint),
		watchTokens:  make(map[string]string),
		index:        newInvertedIndex(),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.run()
	return w
}

// EventType returns the event type this Worker indexes.
func (w *Worker) EventType() string {
	return w.eventType
}

// RefreshSubscriptions replaces subscriber's subscription set on this
// Worker. See eventfilter.FilterWorker.
func (w *Worker) RefreshSubscriptions(ctx context.Context, subscriber eventfilter.SubscriberEndpoint, subs []eventfilter.Subscription, done chan<- struct{}) {
	msg := refreshMsg{subscriber: subscriber, subs: subs, done: done}
	select {
	case w.refreshCh <- msg:
	case <-ctx.Done():
	case <-w.stopped:
	}
}

// ReloadConfiguration atomically replaces the Worker's FieldMap.
func (w *Worker) ReloadConfiguration(ctx context.Context, fieldMap eventfilter.FieldMap) error {
	resp := make(chan error, 1)
	select {
	case w.reloadCh <- reloadMsg{fieldMap: fieldMap, resp: resp}:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stopped:
		return eventfilter.ErrWorkerClosed
	}

	select {
	case err := <-resp:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stopped:
		return eventfilter.ErrWorkerClosed
	}
}

// PushEvent evaluates event against current subscriptions and delivers
// to matches.
func (w *Worker) PushEvent(ctx context.Context, event *eventfilter.Event) {
	select {
	case w.pushCh <- event:
	case <-ctx.Done():
	case <-w.stopped:
	}
}

// Stats returns a snapshot of this Worker's activity counters.
func (w *Worker) Stats() eventfilter.WorkerStats {
	return eventfilter.WorkerStats{
		EventType:         w.eventType,
		SubscriberCount:   int(w.subscriberCount.Load()),
		SubscriptionCount: int(w.subscriptionCount.Load()),
		EventsMatched:     w.eventsMatched.Load(),
		EventsDelivered:   w.eventsDelivered.Load(),
		DeliveryDrops:     w.deliveryDrops.Load(),
		ExtractionErrors:  w.extractionErrors.Load(),
	}
}

// Shutdown stops the Worker's mailbox loop. Idempotent.
func (w *Worker) Shutdown(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.shutdownCh <- ack:
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run() {
	idleTimer := time.NewTimer(w.idleTTL)
	defer idleTimer.Stop()

	for {
		select {
		case <-idleTimer.C:
			if len(w.bySubscriber) == 0 {
				w.terminate()
				return
			}
			idleTimer.Reset(w.idleTTL)

		case msg := <-w.refreshCh:
			w.applyRefresh(msg)
			idleTimer.Reset(w.idleTTL)

		case msg := <-w.reloadCh:
			w.applyReload(msg)
			idleTimer.Reset(w.idleTTL)

		case event := <-w.pushCh:
			// Apply every refresh already queued before matching, so a
			// refresh sent ahead of this event is observed by it.
			for drained := false; !drained; {
				select {
				case msg := <-w.refreshCh:
					w.applyRefresh(msg)
				default:
					drained = true
				}
			}
			w.applyPush(event)
			idleTimer.Reset(w.idleTTL)

		case subscriberID := <-w.deathCh:
			w.purgeSubscriber(subscriberID)
			idleTimer.Reset(w.idleTTL)

		case ack := <-w.shutdownCh:
			w.terminate()
			close(ack)
			return
		}
	}
}

func (w *Worker) applyRefresh(msg refreshMsg) {
	subscriberID := msg.subscriber.ID()

	if len(msg.subs) == 0 {
		w.removeSubscriber(subscriberID)
	} else {
		replacement := make(map[string]eventfilter.Subscription, len(msg.subs))
		for _, sub := range msg.subs {
			replacement[sub.Key()] = sub
		}
		if _, existed := w.bySubscriber[subscriberID]; !existed {
			w.watchEndpoint(msg.subscriber)
		}
		w.bySubscriber[subscriberID] = replacement
		w.endpoints[subscriberID] = msg.subscriber
	}

	w.rebuildIndex()
	w.updateCounts()

	if msg.done != nil {
		close(msg.done)
	}
}

func (w *Worker) applyReload(msg reloadMsg) {
	w.fieldMap = msg.fieldMap
	w.rebuildIndex()
	msg.resp <- nil
}

func (w *Worker) applyPush(event *eventfilter.Event) {
	matched, extractionErrors := w.index.matchSubscribers(event.Payload, w.fieldMap)
	if extractionErrors > 0 {
		w.extractionErrors.Add(int64(extractionErrors))
	}
	if len(matched) == 0 {
		return
	}
	w.eventsMatched.Add(int64(len(matched)))

	for subscriberID := range matched {
		endpoint, ok := w.endpoints[subscriberID]
		if !ok {
			continue
		}
		switch endpoint.Deliver(event) {
		case eventfilter.DeliveryOK:
			w.eventsDelivered.Add(1)
		case eventfilter.DeliveryDead, eventfilter.DeliveryFull:
			w.deliveryDrops.Add(1)
		}
	}
}

func (w *Worker) removeSubscriber(subscriberID string) {
	delete(w.bySubscriber, subscriberID)
	w.unwatchEndpoint(subscriberID)
	delete(w.endpoints, subscriberID)
}

func (w *Worker) purgeSubscriber(subscriberID string) {
	if _, ok := w.bySubscriber[subscriberID]; !ok {
		return
	}
	w.logger.Printf("eventfilter: worker[%s] purging dead subscriber %s", w.eventType, subscriberID)
	delete(w.bySubscriber, subscriberID)
	delete(w.watchTokens, subscriberID)
	delete(w.endpoints, subscriberID)
	w.rebuildIndex()
	w.updateCounts()
}

func (w *Worker) watchEndpoint(endpoint eventfilter.SubscriberEndpoint) {
	token := endpoint.Watch(w.deathCh)
	w.watchTokens[endpoint.ID()] = token
}

func (w *Worker) unwatchEndpoint(subscriberID string) {
	token, ok := w.watchTokens[subscriberID]
	if !ok {
		return
	}
	if endpoint, ok := w.endpoints[subscriberID]; ok {
		endpoint.Unwatch(token)
	}
	delete(w.watchTokens, subscriberID)
}

func (w *Worker) rebuildIndex() {
	idx := newInvertedIndex()
	for subscriberID, subs := range w.bySubscriber {
		for subKey, sub := range subs {
			idx.add(subRef{subscriberID: subscriberID, subKey: subKey}, sub, w.fieldMap)
		}
	}
	w.index = idx
}

func (w *Worker) updateCounts() {
	w.subscriberCount.Store(int64(len(w.bySubscriber)))
	total := 0
	for _, subs := range w.bySubscriber {
		total += len(subs)
	}
	w.subscriptionCount.Store(int64(total))
}

func (w *Worker) terminate() {
	for subscriberID := range w.bySubscriber {
		w.unwatchEndpoint(subscriberID)
	}
	w.bySubscriber = make(map[string]map[string]eventfilter.Subscription)
	w.endpoints = make(map[string]eventfilter.SubscriberEndpoint)
	w.updateCounts()

	close(w.stopped)
	if w.onTerminate != nil {
		w.onTerminate(w.eventType)
	}
}

func (w *Worker) String() string {
	return fmt.Sprintf("Worker(%s)", w.eventType)
}

// Verify that Worker implements eventfilter.FilterWorker at compile
// time.
var _ eventfilter.FilterWorker = (*Worker)(nil)
