package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"

	"github.com/rileyhilliard/hasup/internal/config"
	"github.com/rileyhilliard/hasup/internal/errors"
)

// SessionFlags holds the flags that override the monitor section of the
// config. Empty strings and negative values mean "not set".
type SessionFlags struct {
	Servers        string
	Interval       string
	StartDelay     string
	Timeout        string
	Parallel       bool
	NoPlotter      bool
	FaultTolerance int
}

// AddSessionFlags registers the session override flags on fs.
func AddSessionFlags(fs *pflag.FlagSet, flags *SessionFlags) {
	fs.StringVar(&flags.Servers, "servers", "", "only use these server ids (comma-separated, e.g. 1,3)")
	fs.StringVar(&flags.Interval, "interval", "", "sleep between monitoring passes (e.g., 5s, 1m)")
	fs.StringVar(&flags.StartDelay, "start-delay", "", "delay between bootstrap attempts (e.g., 1s)")
	fs.StringVar(&flags.Timeout, "timeout", "", "per-exchange timeout, 0 waits forever (e.g., 3s)")
	fs.BoolVar(&flags.Parallel, "parallel", false, "poll every active server concurrently")
	fs.BoolVar(&flags.NoPlotter, "no-plotter", false, "do not forward readings to the plotter")
	fs.IntVar(&flags.FaultTolerance, "fault-tolerance", -1, "fault tolerance level, overrides the fault tolerance file")
}

// Apply merges the flags that were set into cfg.
func (f *SessionFlags) Apply(fs *pflag.FlagSet, cfg *config.Config) error {
	if f.Interval != "" {
		d, err := ParseDurationFlag("interval", f.Interval)
		if err != nil {
			return err
		}
		cfg.Monitor.Interval = d
	}
	if f.StartDelay != "" {
		d, err := ParseDurationFlag("start-delay", f.StartDelay)
		if err != nil {
			return err
		}
		cfg.Monitor.StartDelay = d
	}
	if f.Timeout != "" {
		d, err := ParseDurationFlag("timeout", f.Timeout)
		if err != nil {
			return err
		}
		cfg.Monitor.Timeout = d
	}
	if fs.Changed("parallel") {
		cfg.Monitor.Parallel = f.Parallel
	}
	if f.NoPlotter {
		cfg.Plotter.Enabled = false
	}
	if f.Servers != "" {
		servers, err := FilterServers(cfg.Servers, f.Servers)
		if err != nil {
			return err
		}
		cfg.Servers = servers
	}
	return nil
}

// FaultToleranceOverride returns the --fault-tolerance value when set.
func (f *SessionFlags) FaultToleranceOverride(fs *pflag.FlagSet) (int, bool, error) {
	if !fs.Changed("fault-tolerance") {
		return 0, false, nil
	}
	if f.FaultTolerance < 0 {
		return 0, false, errors.New(errors.ErrConfig,
			fmt.Sprintf("--fault-tolerance must be non-negative, got %d", f.FaultTolerance),
			"Pass a level like --fault-tolerance 1")
	}
	return f.FaultTolerance, true, nil
}

// ParseDurationFlag parses a duration flag value.
func ParseDurationFlag(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", value, name),
			"Try something like 5s, 2m, or 500ms.")
	}
	if d < 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s cannot be negative", name),
			"Use a positive duration like 5s.")
	}
	return d, nil
}

// ParseServerIDs parses a comma-separated id list, ignoring empty entries.
func ParseServerIDs(list string) ([]int, error) {
	var ids []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := ParseServerID(part)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// ParseServerID parses one positive server id argument.
func ParseServerID(arg string) (int, error) {
	id, err := cast.ToIntE(strings.TrimLeft(arg, "0"))
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid server id", arg),
			"Server ids are positive integers; see 'hasup-admin servers'.")
	}
	return id, nil
}

// FilterServers keeps the registry entries named in list, in id order.
func FilterServers(servers []config.Server, list string) ([]config.Server, error) {
	ids, err := ParseServerIDs(list)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]config.Server, len(servers))
	for _, s := range servers {
		byID[s.ID] = s
	}

	var out []config.Server
	var missing []string
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			missing = append(missing, fmt.Sprint(id))
			continue
		}
		out = append(out, s)
	}

	if len(missing) > 0 {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("No server with id %s in the registry", strings.Join(missing, ", ")),
			"Run 'hasup-admin servers' to list the configured ids.")
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("No servers match '%s'", list),
			"Double-check the ids or try without the --servers filter.")
	}
	return out, nil
}
