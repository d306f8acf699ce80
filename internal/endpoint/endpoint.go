// Package endpoint provides an in-process SubscriberEndpoint
// implementation: a bounded mailbox plus a liveness-watch primitive.
// It is the in-process stand-in for whatever transport-specific
// endpoint (WebSocket, gRPC stream, ...) the outward channel layer
// provides in production — that layer is out of scope per spec.md §1.
package endpoint

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

const defaultMailboxSize = 100

// Endpoint is a liveness-observable, bounded-mailbox SubscriberEndpoint.
// Delivery is non-blocking: a full mailbox reports DeliveryFull and the
// event is dropped for this endpoint, matching spec.md §4.C's
// best-effort delivery rule.
type Endpoint struct {
	id          string
	connectedAt time.Time

	mailbox chan *eventfilter.Event

	mu       sync.Mutex
	alive    bool
	watchers map[string]chan<- string
}

// New creates a new Endpoint with the given ID and a default-sized
// mailbox.
func New(id string) *Endpoint {
	return NewWithMailboxSize(id, defaultMailboxSize)
}

// NewWithMailboxSize creates a new Endpoint with an explicit mailbox
// capacity.
func NewWithMailboxSize(id string, mailboxSize int) *Endpoint {
	return &Endpoint{
		id:          id,
		connectedAt: time.Now(),
		mailbox:     make(chan *eventfilter.Event, mailboxSize),
		alive:       true,
		watchers:    make(map[string]chan<- string),
	}
}

// ID returns the unique identifier for this endpoint.
func (e *Endpoint) ID() string {
	return e.id
}

// ConnectedAt returns when this endpoint was created.
func (e *Endpoint) ConnectedAt() time.Time {
	return e.connectedAt
}

// Deliver hands event to the endpoint's mailbox without blocking.
func (e *Endpoint) Deliver(event *eventfilter.Event) eventfilter.DeliveryResult {
	e.mu.Lock()
	alive := e.alive
	e.mu.Unlock()

	if !alive {
		return eventfilter.DeliveryDead
	}

	select {
	case e.mailbox <- event:
		return eventfilter.DeliveryOK
	default:
		return eventfilter.DeliveryFull
	}
}

// Mailbox returns the channel of delivered events, for consumption by
// the endpoint's owner (e.g. a WebSocket write pump in production).
func (e *Endpoint) Mailbox() <-chan *eventfilter.Event {
	return e.mailbox
}

// Alive reports whether the endpoint has not yet been killed.
func (e *Endpoint) Alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive
}

// Watch registers a channel that receives this endpoint's ID once when
// Kill is called. The send does not block: a channel with no room at
// that moment misses the notification. The returned token can be passed
// to Unwatch to cancel the registration early.
func (e *Endpoint) Watch(onDeath chan<- string) string {
	token := newToken()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.alive {
		// Already dead: notify immediately, don't retain the watcher.
		select {
		case onDeath <- e.id:
		default:
		}
		return token
	}

	e.watchers[token] = onDeath
	return token
}

// Unwatch cancels a previously registered liveness watch.
func (e *Endpoint) Unwatch(token string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.watchers, token)
}

// Kill marks the endpoint dead and notifies every registered watcher.
// Idempotent.
func (e *Endpoint) Kill() {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.alive = false
	watchers := e.watchers
	e.watchers = make(map[string]chan<- string)
	e.mu.Unlock()

	for _, watcher := range watchers {
		select {
		case watcher <- e.id:
		default:
		}
	}
}

func newToken() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Verify that Endpoint implements eventfilter.SubscriberEndpoint at
// compile time.
var _ eventfilter.SubscriberEndpoint = (*Endpoint)(nil)
