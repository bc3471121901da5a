package cli

import (
	"fmt"
	"net"
	"time"

	"github.com/rileyhilliard/hasup/internal/config"
	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/logger"
	"github.com/rileyhilliard/hasup/internal/monitor"
	"github.com/rileyhilliard/hasup/internal/plotter"
	"github.com/rileyhilliard/hasup/internal/server"
)

// DefaultExchangeTimeout bounds single-shot commands (query, start) when the
// config leaves monitor.timeout at zero.
const DefaultExchangeTimeout = 10 * time.Second

// loadConfig finds, loads and validates the config. Defaults are used when
// no file exists.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return nil, path, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// resolveFaultTolerance returns the override when given, else reads the
// fault tolerance file next to the config.
func resolveFaultTolerance(cfg *config.Config, configPath string, override int, hasOverride bool) (int, error) {
	if hasOverride {
		return override, nil
	}
	return config.LoadFaultTolerance(cfg.FaultTolerancePath(configPath))
}

// componentLogger returns a prefixed env logger in verbose mode and a
// discarding logger otherwise; human status lines come from the reporter.
func componentLogger(quiet bool, prefix string) logger.Logger {
	if quiet || !verboseFlag {
		return logger.Noop()
	}
	return logger.NewEnvLogger(prefix)
}

// connectionOptions builds the per-server transport settings.
func connectionOptions(cfg *config.Config) server.Options {
	connectTimeout := cfg.Monitor.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = server.DefaultDialTimeout
	}
	return server.Options{
		Dialer:       &net.Dialer{Timeout: connectTimeout},
		FrameTimeout: cfg.Monitor.Timeout,
	}
}

// dialer returns the loop's connection factory with one logger per server.
func dialer(opts server.Options, quiet bool) func(server.Identity) monitor.Conn {
	return func(id server.Identity) monitor.Conn {
		o := opts
		o.Logger = componentLogger(quiet, fmt.Sprintf("[server %d]", id.ID))
		return server.NewConnection(id, o)
	}
}

// newSink returns the plotter sink, or nil when forwarding is disabled.
func newSink(cfg *config.Config, quiet bool) *plotter.Sink {
	if !cfg.Plotter.Enabled {
		return nil
	}
	return plotter.NewSink(cfg.Plotter.Host, cfg.Plotter.Port, plotter.Options{
		Dialer:       &net.Dialer{Timeout: plotter.DefaultDialTimeout},
		WriteTimeout: cfg.Monitor.Timeout,
		Logger:       componentLogger(quiet, "[plotter]"),
	})
}

// sessionOptions assembles the monitoring loop for cfg.
func sessionOptions(cfg *config.Config, level int, quiet bool) (monitor.Options, *plotter.Sink) {
	connOpts := connectionOptions(cfg)
	opts := monitor.Options{
		Servers:             cfg.Identities(),
		FaultToleranceLevel: level,
		StartDelay:          cfg.Monitor.StartDelay,
		Interval:            cfg.Monitor.Interval,
		Parallel:            cfg.Monitor.Parallel,
		Connection:          connOpts,
		Dial:                dialer(connOpts, quiet),
		History:             monitor.NewHistory(cfg.Monitor.History),
		Logger:              componentLogger(quiet, "[monitor]"),
	}

	sink := newSink(cfg, quiet)
	if sink != nil {
		opts.Sink = sink
	}
	return opts, sink
}

// lookupServer resolves a server id argument against the registry.
func lookupServer(cfg *config.Config, arg string) (server.Identity, error) {
	id, err := ParseServerID(arg)
	if err != nil {
		return server.Identity{}, err
	}
	identity, ok := cfg.Lookup(id)
	if !ok {
		return server.Identity{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("No server with id %d in the registry", id),
			"Run 'hasup-admin servers' to list the configured ids.")
	}
	return identity, nil
}

// exchangeTimeout is the per-exchange bound for single-shot commands.
func exchangeTimeout(cfg *config.Config) time.Duration {
	if cfg.Monitor.Timeout > 0 {
		return cfg.Monitor.Timeout
	}
	return DefaultExchangeTimeout
}

// wrapConnectError turns a Connect failure into a structured error.
func wrapConnectError(id server.Identity, err error) error {
	return errors.WrapWithCode(err, errors.ErrConnect,
		fmt.Sprintf("Cannot connect to %s", id),
		"Check that the server is running and the registry address is right ('hasup-admin servers').")
}

// wrapRPCError turns an exchange failure into a structured error.
func wrapRPCError(id server.Identity, op string, err error) error {
	return errors.WrapWithCode(err, errors.ErrRPC,
		fmt.Sprintf("%s failed on %s", op, id),
		"The server closed the stream or sent an unexpected reply; retry, or run with --verbose for frame details.")
}
