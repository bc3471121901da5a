package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/hasup/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but hasup-admin only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade hasup-admin or lower the version in hasup.yaml.")
	}

	if err := validateServers(cfg.Servers); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'servers' section in your hasup.yaml.")
	}

	if err := validatePlotter(cfg.Plotter); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'plotter' section in your hasup.yaml.")
	}

	if err := validateMonitor(cfg.Monitor); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'monitor' section in your hasup.yaml.")
	}

	return nil
}

// validateServers checks the registry: at least one entry, unique positive
// ids, and dialable addresses.
func validateServers(servers []Server) error {
	if len(servers) == 0 {
		return fmt.Errorf("no servers configured - add at least one entry with an id, host, and port")
	}

	seen := make(map[int]bool, len(servers))
	for i, s := range servers {
		if s.ID <= 0 {
			return fmt.Errorf("server at position %d needs a positive id (got %d)", i+1, s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("server id %d appears more than once - ids must be unique", s.ID)
		}
		seen[s.ID] = true

		if strings.TrimSpace(s.Host) == "" {
			return fmt.Errorf("server %d needs a host", s.ID)
		}
		if err := validatePort(fmt.Sprintf("server %d", s.ID), s.Port); err != nil {
			return err
		}
	}
	return nil
}

// validatePlotter only checks the address when the plotter is enabled.
func validatePlotter(p PlotterConfig) error {
	if !p.Enabled {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("plotter.host is empty - set it or disable the plotter with 'enabled: false'")
	}
	return validatePort("plotter", p.Port)
}

func validatePort(owner string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s port needs to be 1-65535 (got %d)", owner, port)
	}
	return nil
}

// validateMonitor checks monitor timing and history settings.
func validateMonitor(m MonitorConfig) error {
	if m.Interval <= 0 {
		return fmt.Errorf("monitor.interval needs to be positive (got %v) - try something like '5s'", m.Interval)
	}
	if m.StartDelay < 0 {
		return fmt.Errorf("monitor.start_delay can't be negative (got %v)", m.StartDelay)
	}
	if m.Timeout < 0 {
		return fmt.Errorf("monitor.timeout can't be negative (got %v) - use 0 to wait forever", m.Timeout)
	}
	if m.ConnectTimeout < 0 {
		return fmt.Errorf("monitor.connect_timeout can't be negative (got %v)", m.ConnectTimeout)
	}
	if m.History < 1 {
		return fmt.Errorf("monitor.history needs to keep at least 1 sample (got %d)", m.History)
	}
	return nil
}
