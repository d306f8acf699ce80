package filtersupervisor

import (
	"context"
	"testing"
	"time"

	"github.com/eventfilter-go/eventfilter/internal/endpoint"
	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

const sampleExtractorConfig = `{
	"order.created": {
		"region": {"kind": "json_path", "path": "region", "expected_type": "string"}
	},
	"order.paid": {
		"amount": {"kind": "json_path", "path": "amount", "expected_type": "number"}
	}
}`

func newTestSupervisor(t *testing.T, extractorSource string) *Supervisor {
	t.Helper()
	cfg := NewConfig("node-1", "localhost:9090").
		WithExtractorConfigSource(extractorSource).
		WithWorkerIdleTTL(time.Hour)

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create supervisor: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("failed to start supervisor: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSupervisor_RefreshStartsWorkerOnDemand(t *testing.T) {
	s := newTestSupervisor(t, sampleExtractorConfig)

	ep := endpoint.New("sub-1")
	subs := []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "region", ExpectedValue: "us"},
		}},
	}

	if err := s.RefreshSubscriptions(context.Background(), ep, subs, nil); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	types := s.EventTypes()
	if len(types) != 1 || types[0] != "order.created" {
		t.Fatalf("expected worker for 'order.created', got %v", types)
	}
}

func TestSupervisor_RefreshClearsDroppedEventTypes(t *testing.T) {
	s := newTestSupervisor(t, sampleExtractorConfig)

	ep := endpoint.New("sub-1")
	first := []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
		{Subscriber: ep, EventType: "order.paid"},
	}
	if err := s.RefreshSubscriptions(context.Background(), ep, first, nil); err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}

	second := []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
	}
	if err := s.RefreshSubscriptions(context.Background(), ep, second, first); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		stats, ok := s.WorkerStats("order.paid")
		createdNow, createdOK := s.WorkerStats("order.created")
		if ok && stats.SubscriberCount == 0 && createdOK && createdNow.SubscriberCount == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected order.paid worker to have zero subscribers, got %+v (ok=%v)", stats, ok)
		case <-time.After(10 * time.Millisecond):
		}
	}

	statsCreated, ok := s.WorkerStats("order.created")
	if !ok || statsCreated.SubscriberCount != 1 {
		t.Fatalf("expected order.created subscription to remain, got %+v (ok=%v)", statsCreated, ok)
	}
}

func TestSupervisor_ReloadConfigPushesNewFieldMap(t *testing.T) {
	s := newTestSupervisor(t, `{"order.created": {}}`)

	ep := endpoint.New("sub-1")
	subs := []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created", Constraints: []eventfilter.Constraint{
			{FieldName: "region", ExpectedValue: "us"},
		}},
	}
	if err := s.RefreshSubscriptions(context.Background(), ep, subs, nil); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	worker, ok := lookupWorker(s, "order.created")
	if !ok {
		t.Fatal("expected worker to exist")
	}
	worker.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"us"}`)))
	select {
	case <-ep.Mailbox():
		t.Fatal("subscription on unindexed field must not match before reload")
	case <-time.After(50 * time.Millisecond):
	}

	s.mu.Lock()
	s.config.ExtractorConfigSource = sampleExtractorConfig
	s.mu.Unlock()

	if err := s.ReloadConfig(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	worker.PushEvent(context.Background(), eventfilter.NewEvent("order.created", []byte(`{"region":"us"}`)))
	select {
	case <-ep.Mailbox():
	case <-time.After(time.Second):
		t.Fatal("expected subscription to become live after reload adds the field")
	}
}

func TestSupervisor_ReloadConfigFailureLeavesPriorMapIntact(t *testing.T) {
	s := newTestSupervisor(t, sampleExtractorConfig)

	s.mu.Lock()
	s.config.ExtractorConfigSource = `{not valid json`
	s.mu.Unlock()

	err := s.ReloadConfig(context.Background())
	if err == nil {
		t.Fatal("expected reload with malformed source to fail")
	}

	s.mu.Lock()
	extractorMap := s.extractorMap
	s.mu.Unlock()

	if len(extractorMap.ForEventType("order.created")) == 0 {
		t.Fatal("expected previous extractor map to remain after failed reload")
	}
}

func TestSupervisor_CloseShutsDownAllWorkers(t *testing.T) {
	s := newTestSupervisor(t, sampleExtractorConfig)

	ep := endpoint.New("sub-1")
	subs := []eventfilter.Subscription{
		{Subscriber: ep, EventType: "order.created"},
	}
	if err := s.RefreshSubscriptions(context.Background(), ep, subs, nil); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got: %v", err)
	}

	if len(s.EventTypes()) != 0 {
		t.Fatalf("expected no registered workers after close, got %v", s.EventTypes())
	}
}

func lookupWorker(s *Supervisor, eventType string) (eventfilter.FilterWorker, bool) {
	return s.registry.Lookup(eventType)
}
