package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rileyhilliard/hasup/internal/dashboard"
	"github.com/rileyhilliard/hasup/internal/monitor"
	"github.com/rileyhilliard/hasup/internal/ui"
)

// Command-specific flags
var (
	monitorFlags   SessionFlags
	monitorTUIFlag bool
)

// monitorCmd runs the bootstrap and monitoring session
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Start every server and poll its capacity",
	Long: `Connect to every configured server in id order, send the start command
with the fault tolerance level, then poll each started server for capacity
until none are left or you interrupt with Ctrl+C.

Readings are forwarded to the plotter when one is configured and reachable;
the session carries on without it otherwise.

Dashboard keys (--tui):
  q / Ctrl+C  Stop and quit
  up/k        Select previous server
  down/j      Select next server
  Enter       Show server detail
  Esc         Back
  ?           Show help

Examples:
  hasup-admin monitor
  hasup-admin monitor --servers 1,3 --interval 2s
  hasup-admin monitor --fault-tolerance 2 --no-plotter
  hasup-admin monitor --tui`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return monitorCommand(ctx, MonitorOptions{
			ConfigPath: cfgFile,
			Flags:      &monitorFlags,
			FlagSet:    cmd.Flags(),
			TUI:        monitorTUIFlag,
			Verbose:    verboseFlag,
		}, cmd.OutOrStdout())
	},
}

func init() {
	AddSessionFlags(monitorCmd.Flags(), &monitorFlags)
	monitorCmd.Flags().BoolVar(&monitorTUIFlag, "tui", false, "show the interactive dashboard instead of status lines")
	rootCmd.AddCommand(monitorCmd)
}

// MonitorOptions holds the inputs of the monitor command.
type MonitorOptions struct {
	ConfigPath string
	Flags      *SessionFlags
	FlagSet    *pflag.FlagSet
	TUI        bool
	Verbose    bool
}

// monitorCommand loads the config, resolves the fault tolerance level and
// runs one session. Only configuration problems are returned as errors;
// server and plotter failures are reported and absorbed by the session.
func monitorCommand(ctx context.Context, opts MonitorOptions, out io.Writer) error {
	cfg, cfgPath, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	var override int
	var hasOverride bool
	if opts.Flags != nil && opts.FlagSet != nil {
		if err := opts.Flags.Apply(opts.FlagSet, cfg); err != nil {
			return err
		}
		if override, hasOverride, err = opts.Flags.FaultToleranceOverride(opts.FlagSet); err != nil {
			return err
		}
	}

	level, err := resolveFaultTolerance(cfg, cfgPath, override, hasOverride)
	if err != nil {
		return err
	}

	useTUI := opts.TUI && ui.IsTerminal(os.Stdout)
	if opts.TUI && !useTUI {
		ui.FprintWarning(out, "--tui needs a terminal, falling back to status lines")
	}

	loopOpts, sink := sessionOptions(cfg, level, useTUI)
	plotterAddr := ""
	if sink != nil {
		plotterAddr = sink.Address()
	}

	var result *monitor.Result
	if useTUI {
		model := dashboard.NewModel(loopOpts.Servers, dashboard.Options{
			PlotterAddress: plotterAddr,
			HistorySize:    cfg.Monitor.History,
		})
		result, err = dashboard.Run(ctx, dashboard.RunConfig{Model: model, AltScreen: true},
			func(ctx context.Context, r monitor.Reporter) *monitor.Result {
				o := loopOpts
				o.Reporter = r
				return monitor.New(o).Run(ctx)
			})
		if err != nil {
			return err
		}
	} else {
		details := []string{fmt.Sprintf("fault tolerance level %d", level)}
		if cfgPath != "" {
			details = append(details, "config "+cfgPath)
		}
		ui.PrintHeader(out, ui.HeaderInfo{Version: formatVersion(version), Tagline: "capacity monitor", Details: details})

		printer := ui.NewStatusPrinter(out)
		printer.Verbose = opts.Verbose
		printer.PlotterAddress = plotterAddr
		loopOpts.Reporter = printer
		result = monitor.New(loopOpts).Run(ctx)
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, ui.RenderSessionSummary(result, loopOpts.History))
	return nil
}
