package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-app/agentbridge/internal/logging"
)

// chdir changes into dir for the duration of the test; testing.T.Chdir is
// unavailable before Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentbridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfigFile(t, `
agent:
  binaryPath: /opt/cursor-agent
  apiKey: key-from-file
  model: cursor-fast
  workingDirectory: /work
  unattended: true
ledger:
  path: /data/sessions.db
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/cursor-agent", cfg.Agent.BinaryPath)
	assert.Equal(t, "key-from-file", cfg.Agent.APIKey)
	assert.Equal(t, "cursor-fast", cfg.Agent.Model)
	assert.Equal(t, "/work", cfg.Agent.WorkingDirectory)
	assert.True(t, cfg.Agent.Unattended)
	assert.Equal(t, "/data/sessions.db", cfg.Ledger.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_NoFileYieldsDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.Agent.BinaryPath)
	assert.False(t, cfg.Agent.Unattended)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AGENTBRIDGE_AGENT_MODEL", "from-env")
	t.Setenv("AGENTBRIDGE_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Agent.Model)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestBridgeOptions(t *testing.T) {
	cfg := &Config{
		Agent: AgentConfig{
			BinaryPath:       "/opt/agent",
			APIKey:           "k",
			Model:            "m",
			WorkingDirectory: "/w",
			Unattended:       true,
		},
	}
	log := logging.Nop()

	opts := cfg.BridgeOptions(log)
	assert.Equal(t, "/opt/agent", opts.BinaryPath)
	assert.Equal(t, "k", opts.APIKey)
	assert.Equal(t, "m", opts.Model)
	assert.Equal(t, "/w", opts.WorkingDirectory)
	assert.True(t, opts.Unattended)
	assert.Same(t, log, opts.Logger)
}
