package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hasup/internal/config"
	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/ui"
)

// Command-specific flags
var (
	initForce          bool
	initNonInteractive bool
	initPlotterFlag    string
	initLevelFlag      int
)

// initCmd writes a starter config and fault tolerance file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create hasup.yaml and the fault tolerance file",
	Long: `Create hasup.yaml in the current directory with the reference registry
(servers 1 to 3 on localhost:7001 to 7003) and a dist_subs.conf next to it.

You are asked for the plotter address and the fault tolerance level unless
--non-interactive is given.

Examples:
  hasup-admin init
  hasup-admin init --non-interactive --plotter plots.local:9000 --fault-tolerance 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := InitOptions{
			Dir:            ".",
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
			Plotter:        initPlotterFlag,
			FaultTolerance: -1,
		}
		if cmd.Flags().Changed("fault-tolerance") {
			opts.FaultTolerance = initLevelFlag
		}
		return Init(opts, cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files without asking")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and use flags or defaults")
	initCmd.Flags().StringVar(&initPlotterFlag, "plotter", "", "plotter host:port (default localhost:9000)")
	initCmd.Flags().IntVar(&initLevelFlag, "fault-tolerance", 1, "fault tolerance level to write")
	rootCmd.AddCommand(initCmd)
}

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Directory to write into
	Overwrite      bool   // Overwrite existing files without asking
	NonInteractive bool   // Skip prompts, use flags or defaults
	Plotter        string // Pre-specified plotter host:port
	FaultTolerance int    // Pre-specified level; negative means unset
}

// defaultInitLevel is written when no level is chosen.
const defaultInitLevel = 1

// Init creates hasup.yaml and its fault tolerance file in opts.Dir.
func Init(opts InitOptions, out io.Writer) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)
	faultPath := filepath.Join(dir, config.DefaultFaultToleranceFile)

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	plotterAddr := opts.Plotter
	if plotterAddr == "" {
		plotterAddr = fmt.Sprintf("%s:%d", config.DefaultPlotterHost, config.DefaultPlotterPort)
	}
	levelText := strconv.Itoa(defaultInitLevel)
	if opts.FaultTolerance >= 0 {
		levelText = strconv.Itoa(opts.FaultTolerance)
	}

	if !opts.NonInteractive {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Plotter address").
					Description("Where capacity readings are forwarded (host:port)").
					Placeholder("localhost:9000").
					Value(&plotterAddr).
					Validate(func(s string) error {
						_, _, err := parseAddress(strings.TrimSpace(s))
						if err != nil {
							return fmt.Errorf("enter a host:port address")
						}
						return nil
					}),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Fault tolerance level").
					Description("Sent to every server with the start command").
					Placeholder("1").
					Value(&levelText).
					Validate(func(s string) error {
						if _, err := parseInitLevel(s); err != nil {
							return fmt.Errorf("enter a non-negative integer")
						}
						return nil
					}),
			),
		)

		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}
	}

	host, port, err := parseAddress(strings.TrimSpace(plotterAddr))
	if err != nil {
		return err
	}
	level, err := parseInitLevel(levelText)
	if err != nil {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid fault tolerance level", levelText),
			"Use a non-negative integer like 1")
	}

	cfg := config.DefaultConfig()
	cfg.Plotter.Host = host
	cfg.Plotter.Port = port

	if err := config.Write(configPath, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}
	if err := config.WriteFaultTolerance(faultPath, level); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write fault tolerance file: %s", faultPath),
			"Check directory permissions")
	}

	check := ui.SuccessStyle().Render(ui.SymbolSuccess)
	fmt.Fprintf(out, "%s Created %s\n", check, configPath)
	fmt.Fprintf(out, "%s Created %s (fault tolerance level %d)\n\n", check, faultPath, level)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  hasup-admin servers                 - Review the registry")
	fmt.Fprintln(out, "  hasup-admin servers set <id> <addr> - Point a server somewhere else")
	fmt.Fprintln(out, "  hasup-admin monitor                 - Start and monitor every server")

	return nil
}

func parseInitLevel(s string) (int, error) {
	level, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if level < 0 {
		return 0, fmt.Errorf("negative level %d", level)
	}
	return level, nil
}
