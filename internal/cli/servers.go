package cli

import (
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hasup/internal/config"
	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/ui"
)

// Command-specific flags
var serversJSONFlag bool

// serversCmd lists the server registry
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the configured servers and plotter",
	Long: `Print the server registry and the plotter endpoint from the config.

Examples:
  hasup-admin servers
  hasup-admin servers --json
  hasup-admin servers set 4 worker4.local:7004`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		machineMode = serversJSONFlag
		return serversList(cfgFile, serversJSONFlag, cmd.OutOrStdout())
	},
}

// serversSetCmd adds or updates one registry entry
var serversSetCmd = &cobra.Command{
	Use:   "set <server-id> <host:port>",
	Short: "Add a server to the registry or change its address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return serversSet(cfgFile, args[0], args[1], cmd.OutOrStdout())
	},
}

func init() {
	serversCmd.Flags().BoolVar(&serversJSONFlag, "json", false, "output as JSON")
	serversCmd.AddCommand(serversSetCmd)
	rootCmd.AddCommand(serversCmd)
}

// ServerOutput is the JSON shape of one registry entry.
type ServerOutput struct {
	ID      int    `json:"id"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Address string `json:"address"`
}

// PlotterOutput is the JSON shape of the plotter endpoint.
type PlotterOutput struct {
	Address string `json:"address"`
	Enabled bool   `json:"enabled"`
}

// ServersOutput is the JSON shape of the servers command.
type ServersOutput struct {
	ConfigPath string         `json:"config_path,omitempty"`
	Servers    []ServerOutput `json:"servers"`
	Plotter    PlotterOutput  `json:"plotter"`
}

func serversList(configPath string, asJSON bool, out io.Writer) error {
	cfg, path, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	identities := cfg.Identities()
	plotterAddr := net.JoinHostPort(cfg.Plotter.Host, strconv.Itoa(cfg.Plotter.Port))

	if asJSON {
		result := ServersOutput{
			ConfigPath: path,
			Servers:    make([]ServerOutput, 0, len(identities)),
			Plotter:    PlotterOutput{Address: plotterAddr, Enabled: cfg.Plotter.Enabled},
		}
		for _, id := range identities {
			result.Servers = append(result.Servers, ServerOutput{
				ID:      id.ID,
				Host:    id.Host,
				Port:    id.Port,
				Address: id.Address(),
			})
		}
		return WriteJSONSuccess(out, result)
	}

	rows := make([]ui.RegistryRow, 0, len(identities)+1)
	for _, id := range identities {
		rows = append(rows, ui.RegistryRow{ID: id.ID, Address: id.Address()})
	}
	if cfg.Plotter.Enabled {
		rows = append(rows, ui.RegistryRow{Address: plotterAddr, Plotter: true})
	}

	fmt.Fprintln(out, ui.RenderRegistryTable(rows))
	if path == "" {
		fmt.Fprintln(out, ui.MutedStyle().Render("\nUsing built-in defaults. Run 'hasup-admin init' to write a config."))
	}
	return nil
}

func serversSet(configPath, idArg, address string, out io.Writer) error {
	id, err := ParseServerID(idArg)
	if err != nil {
		return err
	}
	host, port, err := parseAddress(address)
	if err != nil {
		return err
	}

	path, err := config.Find(configPath)
	if err != nil {
		return err
	}
	if path == "" {
		return errors.New(errors.ErrConfig,
			"No config file found",
			"Run 'hasup-admin init' first to create one.")
	}

	entry := config.Server{ID: id, Host: host, Port: port}
	if err := config.SetServer(path, entry); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't update "+path,
			"Check that the file is valid YAML and writable.")
	}

	// Reload so a bad edit is caught now rather than at the next monitor run.
	if _, _, err := loadConfig(path); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s server %d set to %s in %s\n",
		ui.SuccessStyle().Render(ui.SymbolSuccess), id, net.JoinHostPort(host, strconv.Itoa(port)), path)
	return nil
}

// parseAddress splits host:port and checks the port range.
func parseAddress(address string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return "", 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a host:port address", address),
			"Try something like localhost:7001.")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' is not a valid port", portStr),
			"Ports run from 1 to 65535.")
	}
	return host, port, nil
}
