package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete hasup.yaml configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Servers is the registry of worker servers, keyed by id.
	Servers []Server `yaml:"servers" mapstructure:"servers"`

	Plotter PlotterConfig `yaml:"plotter" mapstructure:"plotter"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`

	// FaultToleranceFile holds the fault_tolerance_level setting sent with
	// every start command. Relative paths resolve against the config file's
	// directory (see FaultTolerancePath).
	FaultToleranceFile string `yaml:"fault_tolerance_file" mapstructure:"fault_tolerance_file"`
}

// Server is one registry entry.
type Server struct {
	ID   int    `yaml:"id" mapstructure:"id"`
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// PlotterConfig locates the optional visualization endpoint.
type PlotterConfig struct {
	Host    string `yaml:"host" mapstructure:"host"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
}

// MonitorConfig controls the monitoring session.
type MonitorConfig struct {
	// StartDelay separates consecutive bootstrap attempts.
	StartDelay time.Duration `yaml:"start_delay" mapstructure:"start_delay"`

	// Interval is the sleep between monitoring passes.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Timeout bounds each request/response exchange. Zero waits forever.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// ConnectTimeout bounds each connection attempt.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`

	// Parallel polls every active server concurrently within a pass.
	Parallel bool `yaml:"parallel" mapstructure:"parallel"`

	// History is the number of samples kept per server for the summary.
	History int `yaml:"history" mapstructure:"history"`
}

// Defaults for the reference deployment.
const (
	DefaultPlotterHost        = "localhost"
	DefaultPlotterPort        = 9000
	DefaultFaultToleranceFile = "dist_subs.conf"
	DefaultStartDelay         = time.Second
	DefaultInterval           = 5 * time.Second
	DefaultConnectTimeout     = 10 * time.Second
	DefaultHistory            = 60
)

// DefaultServers returns the reference registry: servers 1..3 on
// localhost:7001..7003.
func DefaultServers() []Server {
	return []Server{
		{ID: 1, Host: "localhost", Port: 7001},
		{ID: 2, Host: "localhost", Port: 7002},
		{ID: 3, Host: "localhost", Port: 7003},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Servers: DefaultServers(),
		Plotter: PlotterConfig{
			Host:    DefaultPlotterHost,
			Port:    DefaultPlotterPort,
			Enabled: true,
		},
		Monitor: MonitorConfig{
			StartDelay:     DefaultStartDelay,
			Interval:       DefaultInterval,
			Timeout:        0,
			ConnectTimeout: DefaultConnectTimeout,
			Parallel:       false,
			History:        DefaultHistory,
		},
		FaultToleranceFile: DefaultFaultToleranceFile,
	}
}
