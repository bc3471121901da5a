package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/logger"
	"github.com/rileyhilliard/hasup/internal/ui"
)

// Global flags
var (
	cfgFile     string
	verboseFlag bool
	noColorFlag bool
)

// rootCmd is the hasup-admin entry point.
var rootCmd = &cobra.Command{
	Use:   "hasup-admin",
	Short: "Start and monitor hasup worker servers",
	Long: `hasup-admin connects to every configured worker server, sends the start
command with the cluster's fault tolerance level, then polls each started
server for capacity and relays the readings to the plotter.

Servers that are unreachable, refuse to start, or fail while polling are
dropped without disturbing the others.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verboseFlag)
		ui.ConfigureColors(noColorFlag, os.Stdout)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./hasup.yaml, then ~/.config/hasup/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "show debug output and every connect attempt")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
}

// Execute runs the root command and exits with the resulting status.
func Execute() {
	os.Exit(run(rootCmd, os.Args[1:], os.Stderr))
}

// run executes cmd with args and returns the process exit status. Errors
// are rendered to stderr.
func run(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	if isUnknownCommandError(err) {
		fmt.Fprintf(stderr, "%s\n\nRun '%s --help' for usage.\n", err, cmd.Name())
		return 2
	}

	if MachineMode() {
		_ = WriteJSONFromError(os.Stdout, err)
		return 1
	}

	fmt.Fprint(stderr, renderError(err))
	return 1
}

// renderError formats structured errors with their suggestion, and plain
// errors on one line.
func renderError(err error) string {
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if errors.CodeOf(err) == "" {
		return ui.ErrorStyle().Render(ui.SymbolFail) + " " + msg
	}
	return msg
}

// isUnknownCommandError reports cobra's usage errors.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
