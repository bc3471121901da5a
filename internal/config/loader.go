package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/server"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "hasup.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/hasup"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'hasup-admin init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. hasup.yaml in current directory
// 3. ~/.config/hasup/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault finds and loads the config, or returns defaults when no file
// exists. The returned path is empty when defaults were used.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	// The registry is replaced wholesale, never merged entry by entry.
	cfg.Servers = nil

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	if !v.IsSet("servers") {
		cfg.Servers = DefaultServers()
	}

	return cfg, nil
}

// setDefaults registers every scalar default with viper so partially
// specified sections keep the remaining defaults.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("version", cfg.Version)
	v.SetDefault("plotter.host", cfg.Plotter.Host)
	v.SetDefault("plotter.port", cfg.Plotter.Port)
	v.SetDefault("plotter.enabled", cfg.Plotter.Enabled)
	v.SetDefault("monitor.start_delay", cfg.Monitor.StartDelay)
	v.SetDefault("monitor.interval", cfg.Monitor.Interval)
	v.SetDefault("monitor.timeout", cfg.Monitor.Timeout)
	v.SetDefault("monitor.connect_timeout", cfg.Monitor.ConnectTimeout)
	v.SetDefault("monitor.parallel", cfg.Monitor.Parallel)
	v.SetDefault("monitor.history", cfg.Monitor.History)
	v.SetDefault("fault_tolerance_file", cfg.FaultToleranceFile)
}

// Identities returns the registry as server identities in ascending id order.
func (c *Config) Identities() []server.Identity {
	ids := make([]server.Identity, 0, len(c.Servers))
	for _, s := range c.Servers {
		ids = append(ids, server.Identity{ID: s.ID, Host: s.Host, Port: s.Port})
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].ID < ids[j].ID })
	return ids
}

// Lookup returns the registry entry for id.
func (c *Config) Lookup(id int) (server.Identity, bool) {
	for _, s := range c.Servers {
		if s.ID == id {
			return server.Identity{ID: s.ID, Host: s.Host, Port: s.Port}, true
		}
	}
	return server.Identity{}, false
}

// FaultTolerancePath resolves FaultToleranceFile. Relative paths are taken
// relative to the config file's directory when one was loaded.
func (c *Config) FaultTolerancePath(configPath string) string {
	p := c.FaultToleranceFile
	if p == "" {
		p = DefaultFaultToleranceFile
	}
	if filepath.IsAbs(p) || configPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}
