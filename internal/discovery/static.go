package discovery

import (
	"context"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

// StaticDiscovery implements Discovery using a fixed list of supervisor
// addresses supplied at startup.
type StaticDiscovery struct {
	seedNodes []string
}

// staticSupervisorHandle implements eventfilter.SupervisorHandle for a
// statically-configured supervisor address.
type staticSupervisorHandle struct {
	id      string
	address string
}

func (h *staticSupervisorHandle) NodeID() string  { return h.id }
func (h *staticSupervisorHandle) Address() string { return h.address }

// NewStaticDiscovery creates a discovery service backed by a fixed list
// of supervisor addresses.
func NewStaticDiscovery(seedNodes []string) *StaticDiscovery {
	return &StaticDiscovery{
		seedNodes: seedNodes,
	}
}

// FindSupervisors returns a handle for each configured seed address.
func (s *StaticDiscovery) FindSupervisors(ctx context.Context) ([]eventfilter.SupervisorHandle, error) {
	handles := make([]eventfilter.SupervisorHandle, len(s.seedNodes))
	for i, address := range s.seedNodes {
		handles[i] = &staticSupervisorHandle{
			id:      address,
			address: address,
		}
	}
	return handles, nil
}

var _ Discovery = (*StaticDiscovery)(nil)
