package filtersupervisor

import (
	"errors"
	"time"

	"github.com/eventfilter-go/eventfilter/internal/filterworker"
)

var (
	// ErrEmptyNodeID is returned when a Config's NodeID is empty.
	ErrEmptyNodeID = errors.New("filtersupervisor: node ID cannot be empty")
	// ErrInvalidListenAddress is returned when a Config's ListenAddress
	// is empty.
	ErrInvalidListenAddress = errors.New("filtersupervisor: listen address cannot be empty")
)

// Config configures a Supervisor.
type Config struct {
	// NodeID uniquely identifies the process this Supervisor runs in.
	NodeID string

	// ListenAddress is the address at which this Supervisor's admin
	// surface is reachable, advertised to other processes via
	// discovery.
	ListenAddress string

	// ExtractorConfigSource is passed to extractorconfig.Load to build
	// the initial and every subsequently reloaded ExtractorMap. Empty
	// yields an empty ExtractorMap (no fields indexable anywhere).
	ExtractorConfigSource string

	// WorkerIdleTTL overrides the idle-TTL Workers use before
	// self-terminating with zero subscriptions.
	WorkerIdleTTL time.Duration

	// ReloadDeadline bounds how long ReloadConfig waits for any single
	// Worker to apply the new FieldMap before giving up.
	ReloadDeadline time.Duration
}

// NewConfig creates a Config with safe defaults.
func NewConfig(nodeID, listenAddress string) *Config {
	return &Config{
		NodeID:         nodeID,
		ListenAddress:  listenAddress,
		WorkerIdleTTL:  filterworker.DefaultIdleTTL,
		ReloadDeadline: 5 * time.Second,
	}
}

// WithExtractorConfigSource sets the ExtractorMap source.
func (c *Config) WithExtractorConfigSource(source string) *Config {
	c.ExtractorConfigSource = source
	return c
}

// WithWorkerIdleTTL overrides the Worker idle-TTL.
func (c *Config) WithWorkerIdleTTL(ttl time.Duration) *Config {
	c.WorkerIdleTTL = ttl
	return c
}

// WithReloadDeadline overrides the per-worker reload deadline.
func (c *Config) WithReloadDeadline(d time.Duration) *Config {
	c.ReloadDeadline = d
	return c
}

// Validate checks the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.NodeID == "" {
		return ErrEmptyNodeID
	}
	if c.ListenAddress == "" {
		return ErrInvalidListenAddress
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.WorkerIdleTTL == 0 {
		c.WorkerIdleTTL = filterworker.DefaultIdleTTL
	}
	if c.ReloadDeadline == 0 {
		c.ReloadDeadline = 5 * time.Second
	}
}
