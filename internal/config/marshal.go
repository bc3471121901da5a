package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations as strings, the way humans
// write them in hasup.yaml.
type fileConfig struct {
	Version            int           `yaml:"version"`
	Servers            []Server      `yaml:"servers"`
	Plotter            PlotterConfig `yaml:"plotter"`
	Monitor            fileMonitor   `yaml:"monitor"`
	FaultToleranceFile string        `yaml:"fault_tolerance_file"`
}

type fileMonitor struct {
	StartDelay     string `yaml:"start_delay"`
	Interval       string `yaml:"interval"`
	Timeout        string `yaml:"timeout"`
	ConnectTimeout string `yaml:"connect_timeout"`
	Parallel       bool   `yaml:"parallel"`
	History        int    `yaml:"history"`
}

const fileHeader = `# hasup-admin configuration
# Servers are bootstrapped in ascending id order.
`

// Marshal renders cfg as hasup.yaml contents.
func Marshal(cfg *Config) ([]byte, error) {
	out := fileConfig{
		Version: cfg.Version,
		Servers: cfg.Servers,
		Plotter: cfg.Plotter,
		Monitor: fileMonitor{
			StartDelay:     cfg.Monitor.StartDelay.String(),
			Interval:       cfg.Monitor.Interval.String(),
			Timeout:        cfg.Monitor.Timeout.String(),
			ConnectTimeout: cfg.Monitor.ConnectTimeout.String(),
			Parallel:       cfg.Monitor.Parallel,
			History:        cfg.Monitor.History,
		},
		FaultToleranceFile: cfg.FaultToleranceFile,
	}

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write marshals cfg to path.
func Write(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// WriteFaultTolerance writes a fault tolerance file holding level.
func WriteFaultTolerance(path string, level int) error {
	data := fmt.Sprintf("%s = %d\n", FaultToleranceKey, level)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write fault tolerance file: %w", err)
	}
	return nil
}
