package endpoint

import (
	"testing"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

func TestEndpoint_DeliverAndReceive(t *testing.T) {
	ep := New("sub-1")
	event := eventfilter.NewEvent("order.created", []byte(`{"id":1}`))

	if result := ep.Deliver(event); result != eventfilter.DeliveryOK {
		t.Fatalf("expected DeliveryOK, got %v", result)
	}

	select {
	case received := <-ep.Mailbox():
		if received.Type != "order.created" {
			t.Errorf("expected type 'order.created', got %q", received.Type)
		}
	default:
		t.Fatal("expected event in mailbox")
	}
}

func TestEndpoint_DeliverAfterKillIsDead(t *testing.T) {
	ep := New("sub-1")
	ep.Kill()

	result := ep.Deliver(eventfilter.NewEvent("order.created", nil))
	if result != eventfilter.DeliveryDead {
		t.Fatalf("expected DeliveryDead, got %v", result)
	}
}

func TestEndpoint_MailboxFullDropsEvent(t *testing.T) {
	ep := NewWithMailboxSize("sub-1", 1)

	if result := ep.Deliver(eventfilter.NewEvent("t", nil)); result != eventfilter.DeliveryOK {
		t.Fatalf("expected first delivery to succeed, got %v", result)
	}
	if result := ep.Deliver(eventfilter.NewEvent("t", nil)); result != eventfilter.DeliveryFull {
		t.Fatalf("expected second delivery to report DeliveryFull, got %v", result)
	}
}

func TestEndpoint_WatchNotifiedOnKill(t *testing.T) {
	ep := New("sub-1")
	notifications := make(chan string, 1)
	ep.Watch(notifications)

	ep.Kill()

	select {
	case id := <-notifications:
		if id != "sub-1" {
			t.Errorf("expected notification for 'sub-1', got %q", id)
		}
	default:
		t.Fatal("expected death notification")
	}
}

func TestEndpoint_UnwatchCancelsNotification(t *testing.T) {
	ep := New("sub-1")
	notifications := make(chan string, 1)
	token := ep.Watch(notifications)
	ep.Unwatch(token)

	ep.Kill()

	select {
	case <-notifications:
		t.Fatal("expected no notification after Unwatch")
	default:
	}
}

func TestEndpoint_KillIsIdempotent(t *testing.T) {
	ep := New("sub-1")
	ep.Kill()
	ep.Kill()

	if ep.Alive() {
		t.Fatal("expected endpoint to remain dead")
	}
}

func TestEndpoint_WatchAfterKillNotifiesImmediately(t *testing.T) {
	ep := New("sub-1")
	ep.Kill()

	notifications := make(chan string, 1)
	ep.Watch(notifications)

	select {
	case id := <-notifications:
		if id != "sub-1" {
			t.Errorf("expected 'sub-1', got %q", id)
		}
	default:
		t.Fatal("expected immediate notification for already-dead endpoint")
	}
}
