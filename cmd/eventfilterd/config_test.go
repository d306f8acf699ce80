package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventfilterd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadStartupConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadStartupConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, config.NodeID)
	assert.Equal(t, ":8081", config.ListenAddress)
	assert.Equal(t, 5*time.Minute, config.WorkerIdleTTL)
	assert.Equal(t, 5*time.Second, config.ReloadDeadline)
}

func TestLoadStartupConfig_EmptyPathUsesDefaults(t *testing.T) {
	config, err := LoadStartupConfig("")
	require.NoError(t, err)
	assert.NotEmpty(t, config.NodeID)
	assert.Equal(t, ":8081", config.ListenAddress)
}

func TestLoadStartupConfig_ParsesYAML(t *testing.T) {
	path := writeYAML(t, `
node_id: node-1
listen_address: ":9091"
extractor_config_source: /etc/eventfilter/extractors.json
worker_idle_ttl: 2m
reload_deadline: 3s
jwt_secret: super-secret
discovery_seeds:
  - node-2.internal:9091
  - node-3.internal:9091
`)

	config, err := LoadStartupConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "node-1", config.NodeID)
	assert.Equal(t, ":9091", config.ListenAddress)
	assert.Equal(t, "/etc/eventfilter/extractors.json", config.ExtractorConfigSource)
	assert.Equal(t, 2*time.Minute, config.WorkerIdleTTL)
	assert.Equal(t, 3*time.Second, config.ReloadDeadline)
	assert.Equal(t, "super-secret", config.JWTSecret)
	assert.Equal(t, []string{"node-2.internal:9091", "node-3.internal:9091"}, config.DiscoverySeeds)
}

func TestLoadStartupConfig_DefaultsFillZeroFields(t *testing.T) {
	path := writeYAML(t, `node_id: node-1`)

	config, err := LoadStartupConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "node-1", config.NodeID)
	assert.Equal(t, ":8081", config.ListenAddress)
	assert.Equal(t, 5*time.Minute, config.WorkerIdleTTL)
}

func TestLoadStartupConfig_MalformedYAMLFails(t *testing.T) {
	path := writeYAML(t, "node_id: [unterminated")

	_, err := LoadStartupConfig(path)
	assert.Error(t, err)
}

func TestStartupConfig_ValidateRejectsEmptyNodeID(t *testing.T) {
	config := &StartupConfig{ListenAddress: ":8081"}
	assert.Error(t, config.Validate())
}
