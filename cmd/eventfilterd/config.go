package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StartupConfig is the daemon's on-disk configuration file, unmarshaled
// from YAML. It layers on top of filtersupervisor.Config/adminapi.Config
// the same way quix-labs/pg-el-sync's Config.LoadFromYaml layers its
// sync config on top of plain Go structs.
type StartupConfig struct {
	NodeID                string        `yaml:"node_id"`
	ListenAddress         string        `yaml:"listen_address"`
	ExtractorConfigSource string        `yaml:"extractor_config_source"`
	WorkerIdleTTL         time.Duration `yaml:"worker_idle_ttl"`
	ReloadDeadline        time.Duration `yaml:"reload_deadline"`
	JWTSecret             string        `yaml:"jwt_secret"`
	DiscoverySeeds        []string      `yaml:"discovery_seeds"`
}

// SetDefaults fills in zero-valued fields with safe defaults, following
// the Config.SetDefaults convention the rest of the ambient stack uses.
func (c *StartupConfig) SetDefaults() {
	if c.NodeID == "" {
		c.NodeID = defaultNodeID()
	}
	if c.ListenAddress == "" {
		c.ListenAddress = ":8081"
	}
	if c.WorkerIdleTTL == 0 {
		c.WorkerIdleTTL = 5 * time.Minute
	}
	if c.ReloadDeadline == 0 {
		c.ReloadDeadline = 5 * time.Second
	}
}

// Validate checks the startup config for obviously broken values.
func (c *StartupConfig) Validate() error {
	if c.NodeID == "" {
		return fmt.Errorf("eventfilterd: node_id cannot be empty")
	}
	if c.ListenAddress == "" {
		return fmt.Errorf("eventfilterd: listen_address cannot be empty")
	}
	return nil
}

// LoadStartupConfig reads and parses a YAML startup file at path. A
// missing path is not an error: the daemon starts with pure defaults.
func LoadStartupConfig(path string) (*StartupConfig, error) {
	config := &StartupConfig{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				config.SetDefaults()
				return config, nil
			}
			return nil, fmt.Errorf("eventfilterd: reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("eventfilterd: parsing config file %s: %w", path, err)
		}
	}

	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func defaultNodeID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "eventfilter-node-1"
	}
	return fmt.Sprintf("eventfilter-%s", hostname)
}
