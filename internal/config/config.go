// Package config loads aquameter settings from defaults, a YAML config
// file, environment variables and CLI flags, in rising precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultDataPath     = "usage_real.csv"
	DefaultDatabasePath = "aquameter.db"
	DefaultListenAddr   = ":8000"
	DefaultOutput       = "text"
)

// Config is the resolved runtime configuration.
type Config struct {
	// DataPath is the hourly usage CSV fed to the simulator.
	DataPath string `koanf:"data_path"`
	// DatabasePath is the SQLite file holding settings, the manual ledger
	// and reports. ":memory:" is accepted.
	DatabasePath string `koanf:"database_path"`
	// ListenAddr is the HTTP bind address.
	ListenAddr string `koanf:"listen_addr"`
	// Watch reloads the simulator when the CSV changes on disk.
	Watch   bool   `koanf:"watch"`
	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"` // text or json log output
}

var configFileUsed string

// findConfigFile picks the config file: an explicit path wins, otherwise
// aquameter.yaml then aquameter.yml in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"aquameter.yaml", "aquameter.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration. Precedence, highest to lowest:
// flags > AQUAMETER_ env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_path":     DefaultDataPath,
		"database_path": DefaultDatabasePath,
		"listen_addr":   DefaultListenAddr,
		"watch":         true,
		"verbose":       false,
		"output":        DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// AQUAMETER_DATA_PATH -> data_path
	if err := k.Load(env.Provider("AQUAMETER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AQUAMETER_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values after merging all sources.
func (c *Config) Validate() error {
	if c.Output != "text" && c.Output != "json" {
		return fmt.Errorf("invalid output %q, expected text or json", c.Output)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DataPath == "" {
		return fmt.Errorf("data_path must not be empty")
	}
	return nil
}

// ConfigFileUsed returns the config file path picked by the last Load.
func ConfigFileUsed() string {
	return configFileUsed
}
