package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hasup/internal/server"
	"github.com/rileyhilliard/hasup/internal/ui"
)

// Command-specific flags
var queryJSONFlag bool

// queryCmd sends one ad-hoc capacity query
var queryCmd = &cobra.Command{
	Use:   "query <server-id>",
	Short: "Ask one server for its capacity without starting it",
	Long: `Connect to one server, send a capacity query and print the answer.

The server does not need to be started. Nothing is forwarded to the plotter.

Examples:
  hasup-admin query 2
  hasup-admin query 2 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = queryJSONFlag
		return queryCommand(cmd.Context(), QueryOptions{
			ConfigPath: cfgFile,
			ServerArg:  args[0],
			JSON:       queryJSONFlag,
		}, cmd.OutOrStdout())
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSONFlag, "json", false, "output as JSON")
	rootCmd.AddCommand(queryCmd)
}

// QueryOptions holds the inputs of the query command.
type QueryOptions struct {
	ConfigPath string
	ServerArg  string
	JSON       bool
}

// QueryOutput is the JSON shape of a query result.
type QueryOutput struct {
	ServerID  int    `json:"server_id"`
	Address   string `json:"address"`
	Status    int32  `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

func queryCommand(ctx context.Context, opts QueryOptions, out io.Writer) error {
	cfg, _, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	identity, err := lookupServer(cfg, opts.ServerArg)
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
	capacity, err := conn.QueryCapacity(ctx)
	if err != nil {
		return wrapRPCError(identity, "Capacity query", err)
	}

	if opts.JSON {
		return WriteJSONSuccess(out, QueryOutput{
			ServerID:  identity.ID,
			Address:   identity.Address(),
			Status:    capacity.ServerStatus,
			Timestamp: capacity.Timestamp,
		})
	}

	fmt.Fprintf(out, "%s %s status %d\n",
		ui.SuccessStyle().Render(ui.SymbolSuccess), identity, capacity.ServerStatus)
	if ts := formatServerTimestamp(capacity.Timestamp); ts != "" {
		fmt.Fprintf(out, "  %s reported at %s\n", ui.MutedStyle().Render(ui.SymbolReading), ts)
	}
	return nil
}

// formatServerTimestamp renders a reply timestamp. The reference servers
// send unix milliseconds; small values are taken as seconds.
func formatServerTimestamp(ts int64) string {
	if ts <= 0 {
		return ""
	}
	var t time.Time
	if ts > 1e11 {
		t = time.UnixMilli(ts)
	} else {
		t = time.Unix(ts, 0)
	}
	return t.Format("2006-01-02 15:04:05")
}
