// Package config loads the host-side settings the bridge consumes: where
// the agent binary lives, how to authenticate, and which model to use.
// Sources in precedence order: explicit file, AGENTBRIDGE_* environment
// variables, defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/inkwell-app/agentbridge/cursoragent"
	"github.com/inkwell-app/agentbridge/internal/logging"
)

// Config is the full configuration tree.
type Config struct {
	Agent   AgentConfig    `mapstructure:"agent"`
	Ledger  LedgerConfig   `mapstructure:"ledger"`
	Logging logging.Config `mapstructure:"logging"`
}

// AgentConfig configures the agent subprocess.
type AgentConfig struct {
	// BinaryPath pins the executable; empty means platform candidates.
	BinaryPath string `mapstructure:"binaryPath"`
	// APIKey is the fallback credential when neither CURSOR_API_KEY nor a
	// CLI login is available.
	APIKey string `mapstructure:"apiKey"`
	// Model for new sessions.
	Model string `mapstructure:"model"`
	// WorkingDirectory the agent runs in; empty means the host's cwd.
	WorkingDirectory string `mapstructure:"workingDirectory"`
	// Unattended executes tools without interactive approval.
	Unattended bool `mapstructure:"unattended"`
}

// LedgerConfig configures conversation persistence. An empty path disables it.
type LedgerConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration. An explicit path must exist; otherwise the
// default locations are optional and absence just yields defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("agent.model", "")
	v.SetDefault("agent.unattended", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix("AGENTBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("agentbridge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "agentbridge"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// BridgeOptions builds the per-invocation snapshot the bridge consumes.
func (c *Config) BridgeOptions(log *logging.Logger) cursoragent.Options {
	return cursoragent.Options{
		BinaryPath:       c.Agent.BinaryPath,
		APIKey:           c.Agent.APIKey,
		Model:            c.Agent.Model,
		WorkingDirectory: c.Agent.WorkingDirectory,
		Unattended:       c.Agent.Unattended,
		Logger:           log,
	}
}
