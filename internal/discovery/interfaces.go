// Package discovery locates the other Filter Supervisor processes
// participating in a deployment, for the admin surface's Processes
// listing. It is adapted from the teacher's peer-discovery package,
// generalized from mesh peers to supervisor processes.
package discovery

import (
	"context"

	"github.com/eventfilter-go/eventfilter/pkg/eventfilter"
)

// Discovery locates the set of Filter Supervisor processes currently
// believed to be part of the deployment.
type Discovery interface {
	// FindSupervisors discovers and returns the known supervisor
	// processes.
	FindSupervisors(ctx context.Context) ([]eventfilter.SupervisorHandle, error)
}
