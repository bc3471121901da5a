package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/server"
	"github.com/rileyhilliard/hasup/internal/ui"
)

// Command-specific flags
var (
	startFaultToleranceFlag int
	startJSONFlag           bool
)

// startCmd sends the start command to one server
var startCmd = &cobra.Command{
	Use:   "start <server-id>",
	Short: "Send the start command to one server",
	Long: `Connect to one server and send the start command with the fault tolerance
level, then disconnect. Use this to start a single server by hand; 'monitor'
starts every server and keeps polling them.

Examples:
  hasup-admin start 1
  hasup-admin start 3 --fault-tolerance 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = startJSONFlag
		opts := StartOptions{
			ConfigPath: cfgFile,
			ServerArg:  args[0],
			JSON:       startJSONFlag,
		}
		if cmd.Flags().Changed("fault-tolerance") {
			if startFaultToleranceFlag < 0 {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("--fault-tolerance must be non-negative, got %d", startFaultToleranceFlag),
					"Pass a level like --fault-tolerance 1")
			}
			opts.FaultTolerance = startFaultToleranceFlag
			opts.HasFaultTolerance = true
		}
		return startCommand(cmd.Context(), opts, cmd.OutOrStdout())
	},
}

func init() {
	startCmd.Flags().IntVar(&startFaultToleranceFlag, "fault-tolerance", -1, "fault tolerance level, overrides the fault tolerance file")
	startCmd.Flags().BoolVar(&startJSONFlag, "json", false, "output as JSON")
	rootCmd.AddCommand(startCmd)
}

// StartOptions holds the inputs of the start command.
type StartOptions struct {
	ConfigPath        string
	ServerArg         string
	FaultTolerance    int
	HasFaultTolerance bool
	JSON              bool
}

// StartOutput is the JSON shape of a start result.
type StartOutput struct {
	ServerID            int    `json:"server_id"`
	Address             string `json:"address"`
	FaultToleranceLevel int    `json:"fault_tolerance_level"`
	Accepted            bool   `json:"accepted"`
}

func startCommand(ctx context.Context, opts StartOptions, out io.Writer) error {
	cfg, cfgPath, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	identity, err := lookupServer(cfg, opts.ServerArg)
	if err != nil {
		return err
	}
	level, err := resolveFaultTolerance(cfg, cfgPath, opts.FaultTolerance, opts.HasFaultTolerance)
	if err != nil {
		return err
	}

	connOpts := connectionOptions(cfg)
	connOpts.Logger = componentLogger(opts.JSON, fmt.Sprintf("[server %d]", identity.ID))

	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout(cfg))
	defer cancel()

	conn := server.NewConnection(identity, connOpts)
	defer conn.Close()

	if err := conn.Connect(ctx); err != nil {
		return wrapConnectError(identity, err)
	}
	accepted, err := conn.SendStart(ctx, level)
	if err != nil {
		return wrapRPCError(identity, "Start command", err)
	}
	if !accepted {
		return errors.New(errors.ErrRPC,
			fmt.Sprintf("Server %d refused the start command", identity.ID),
			"The server answered NOP. Check that its id matches the registry and that it is not already started.")
	}

	if opts.JSON {
		return WriteJSONSuccess(out, StartOutput{
			ServerID:            identity.ID,
			Address:             identity.Address(),
			FaultToleranceLevel: level,
			Accepted:            true,
		})
	}

	fmt.Fprintf(out, "%s %s started (fault tolerance level %d)\n",
		ui.SuccessStyle().Render(ui.SymbolSuccess), identity, level)
	return nil
}
