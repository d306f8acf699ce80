package discovery

import (
	"context"
	"testing"
)

func TestStaticDiscovery_FindSupervisors(t *testing.T) {
	seedNodes := []string{"node1:8080", "node2:8080"}
	d := NewStaticDiscovery(seedNodes)

	ctx := context.Background()
	handles, err := d.FindSupervisors(ctx)
	if err != nil {
		t.Errorf("expected no error from FindSupervisors, got %v", err)
	}

	if len(handles) != 2 {
		t.Fatalf("expected 2 handles, got %d", len(handles))
	}

	if handles[0].NodeID() != "node1:8080" || handles[0].Address() != "node1:8080" {
		t.Errorf("unexpected first handle: id=%s address=%s", handles[0].NodeID(), handles[0].Address())
	}
	if handles[1].NodeID() != "node2:8080" || handles[1].Address() != "node2:8080" {
		t.Errorf("unexpected second handle: id=%s address=%s", handles[1].NodeID(), handles[1].Address())
	}
}

func TestStaticDiscovery_EmptySeedNodes(t *testing.T) {
	d := NewStaticDiscovery([]string{})

	handles, err := d.FindSupervisors(context.Background())
	if err != nil {
		t.Errorf("expected no error with empty seeds, got %v", err)
	}
	if len(handles) != 0 {
		t.Errorf("expected 0 handles with empty seed nodes, got %d", len(handles))
	}
}

func TestStaticDiscovery_InterfaceCompliance(t *testing.T) {
	var _ Discovery = (*StaticDiscovery)(nil)
}
