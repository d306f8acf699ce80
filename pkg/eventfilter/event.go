package eventfilter

import "time"

// Event represents a single typed event flowing through the gateway.
type Event struct {
	// Type identifies the event's class and selects which FilterWorker
	// evaluates it.
	Type string

	// Payload is the raw event data, typically JSON (immutable after
	// creation).
	Payload []byte

	// Timestamp is when this event was created.
	Timestamp time.Time

	// Headers are key-value metadata associated with this event
	// (immutable after creation).
	Headers map[string]string
}

// NewEvent creates a new Event with the given type and payload.
// The payload is copied to ensure immutability.
func NewEvent(eventType string, payload []byte) *Event {
	return NewEventWithHeaders(eventType, payload, nil)
}

// NewEventWithHeaders creates a new Event with headers.
// Both payload and headers are copied to ensure immutability.
func NewEventWithHeaders(eventType string, payload []byte, headers map[string]string) *Event {
	payloadCopy := make([]byte, len(payload))
	copy(payloadCopy, payload)

	headersCopy := make(map[string]string, len(headers))
	for k, v := range headers {
		headersCopy[k] = v
	}

	return &Event{
		Type:      eventType,
		Payload:   payloadCopy,
		Timestamp: time.Now().UTC(),
		Headers:   headersCopy,
	}
}

// Copy returns a deep copy of the Event.
func (e *Event) Copy() *Event {
	payloadCopy := make([]byte, len(e.Payload))
	copy(payloadCopy, e.Payload)

	headersCopy := make(map[string]string, len(e.Headers))
	for k, v := range e.Headers {
		headersCopy[k] = v
	}

	return &Event{
		Type:      e.Type,
		Payload:   payloadCopy,
		Timestamp: e.Timestamp,
		Headers:   headersCopy,
	}
}
