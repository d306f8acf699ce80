package filterworker

import (
	"context"
	"testing"
	"time"

	"github.com/eventfilter-go/eventfilter/internal/endpoint"
	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

func stringFieldMap(fields ...string) eventfilter.FieldMap {
	fm := make(eventfilter.FieldMap, len(fields))
	for _, f := range fields {
		fm[f] = eventfilter.ExtractorSpec{
			Kind:         eventfilter.ExtractorKindJSONPath,
			Path:         f,
			ExpectedType: eventfilter.ExpectedTypeString,
		}
	}
	return fm
}

func refresh(t *testing.T, w *Worker, ep eventfilter.SubscriberEndpoint, subs []eventfilter.Subscription) {
	t.Helper()
	done := make(chan struct{})
	w.RefreshSubscriptions(context.Background(), ep, subs, done)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh did not complete")
	}
}

func TestWorker_EmptyConstraintsMatchesEverything(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
	})

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"us"}`)))

	select {
	case <-ep.Mailbox():
	case <-time.After(time.Second):
		t.Fatal("expected delivery for unconstrained subscription")
	}
}

func TestWorker_ConstraintMatchAndMismatch(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "region", ExpectedValue: "us"},
		}},
	})

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"eu"}`)))
	select {
	case <-ep.Mailbox():
		t.Fatal("expected no delivery for mismatched region")
	case <-time.After(50 * time.Millisecond):
	}

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"us"}`)))
	select {
	case <-ep.Mailbox():
	case <-time.After(time.Second):
		t.Fatal("expected delivery for matching region")
	}
}

func TestWorker_RefreshReplacesNotMerges(t *testing.T) {
	w := New("order.created", stringFieldMap("region", "tier"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "region", ExpectedValue: "us"},
		}},
	})
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "tier", ExpectedValue: "gold"},
		}},
	})

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"us","tier":"silver"}`)))
	select {
	case <-ep.Mailbox():
		t.Fatal("old constraint should no longer be active after replace")
	case <-time.After(50 * time.Millisecond):
	}

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"eu","tier":"gold"}`)))
	select {
	case <-ep.Mailbox():
	case <-time.After(time.Second):
		t.Fatal("new constraint should be active after replace")
	}
}

func TestWorker_RefreshIsIdempotent(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	subs := []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "region", ExpectedValue: "us"},
		}},
	}
	refresh(t, w, ep, subs)
	refresh(t, w, ep, subs)

	stats := w.Stats()
	if stats.SubscriberCount != 1 || stats.SubscriptionCount != 1 {
		t.Fatalf("expected 1 subscriber / 1 subscription after idempotent refresh, got %+v", stats)
	}
}

func TestWorker_EmptyRefreshRemovesSubscriber(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
	})
	refresh(t, w, ep, nil)

	stats := w.Stats()
	if stats.SubscriberCount != 0 {
		t.Fatalf("expected 0 subscribers after empty refresh, got %d", stats.SubscriberCount)
	}
}

func TestWorker_UnknownFieldNeverMatchesUntilReload(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "tier", ExpectedValue: "gold"},
		}},
	})

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"tier":"gold"}`)))
	select {
	case <-ep.Mailbox():
		t.Fatal("subscription on unindexed field must not match")
	case <-time.After(50 * time.Millisecond):
	}

	if err := w.ReloadConfiguration(context.Background(), stringFieldMap("region", "tier")); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"tier":"gold"}`)))
	select {
	case <-ep.Mailbox():
	case <-time.After(time.Second):
		t.Fatal("subscription should become live once field is reloaded in")
	}
}

func TestWorker_MultipleMatchingSubscriptionsDeliverOnce(t *testing.T) {
	w := New("order.created", stringFieldMap("region", "tier"))
	defer w.Shutdown(context.Background())

	ep := endpoint.NewWithMailboxSize("sub-1", 10)
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "region", ExpectedValue: "us"},
		}},
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "tier", ExpectedValue: "gold"},
		}},
	})

	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"us","tier":"gold"}`)))

	select {
	case <-ep.Mailbox():
	case <-time.After(time.Second):
		t.Fatal("expected one delivery")
	}
	select {
	case <-ep.Mailbox():
		t.Fatal("expected at most one delivery per matched event for a single subscriber")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWorker_DeadSubscriberPurged(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
	})

	ep.Kill()

	deadline := time.After(time.Second)
	for {
		if w.Stats().SubscriberCount == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expected dead subscriber to be purged")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorker_IdleTTLTerminatesWithNoSubscriptions(t *testing.T) {
	terminated := make(chan string, 1)
	_ = New("order.created", stringFieldMap("region"),
		WithIdleTTL(20*time.Millisecond),
		WithOnTerminate(func(eventType string) { terminated <- eventType }))

	select {
	case eventType := <-terminated:
		if eventType != "order.created" {
			t.Errorf("expected terminate callback for 'order.created', got %q", eventType)
		}
	case <-time.After(time.Second):
		t.Fatal("expected idle worker to self-terminate")
	}
}

func TestWorker_IdleTTLDoesNotFireWithActiveSubscriptions(t *testing.T) {
	terminated := make(chan string, 1)
	w := New("order.created", stringFieldMap("region"),
		WithIdleTTL(20*time.Millisecond),
		WithOnTerminate(func(eventType string) { terminated <- eventType }))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
	})

	select {
	case <-terminated:
		t.Fatal("worker with active subscriptions must not self-terminate")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWorker_StatsReflectActivity(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	defer w.Shutdown(context.Background())

	ep := endpoint.New("sub-1")
	refresh(t, w, ep, []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
	})
	w.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"us"}`)))

	deadline := time.After(time.Second)
	for {
		stats := w.Stats()
		if stats.EventsMatched == 1 && stats.EventsDelivered == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected stats to reflect one match and one delivery, got %+v", stats)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorker_ShutdownIsIdempotent(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))

	if err := w.Shutdown(context.Background()); err != nil {
		t.Fatalf("first shutdown failed: %v", err)
	}
	if err := w.Shutdown(context.Background()); err != nil {
		t.Fatalf("second shutdown should be a no-op, got: %v", err)
	}
}

func TestWorker_ReloadAfterShutdownReturnsClosedError(t *testing.T) {
	w := New("order.created", stringFieldMap("region"))
	if err := w.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	err := w.ReloadConfiguration(context.Background(), stringFieldMap("region", "tier"))
	if err != eventfilter.ErrWorkerClosed {
		t.Fatalf("expected ErrWorkerClosed, got %v", err)
	}
}
