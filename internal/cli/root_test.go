package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hasup/internal/errors"
)

func TestRunUnknownCommand(t *testing.T) {
	var stderr bytes.Buffer
	code := run(rootCmd, []string{"frobnicate"}, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "unknown command")
	assert.Contains(t, stderr.String(), "hasup-admin --help")
}

func TestRunUnknownFlag(t *testing.T) {
	var stderr bytes.Buffer
	code := run(rootCmd, []string{"version", "--frobnicate"}, &stderr)

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "unknown flag")
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	SetVersionInfo("1.2.0", "abc123", "2026-01-01")
	defer SetVersionInfo("dev", "none", "unknown")

	code := run(rootCmd, []string{"version"}, &bytes.Buffer{})
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "hasup-admin v1.2.0")
	assert.Contains(t, out.String(), "commit: abc123")
}

func TestRunConfigError(t *testing.T) {
	var stderr bytes.Buffer
	code := run(rootCmd, []string{"servers", "--config", "/does/not/exist.yaml"}, &stderr)
	defer func() { cfgFile = "" }()

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Specified config file not found")
}

func TestRunExitError(t *testing.T) {
	cmd := &cobra.Command{
		Use:           "probe",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.NewExitError(3)
		},
	}

	var stderr bytes.Buffer
	assert.Equal(t, 3, run(cmd, []string{}, &stderr))
	assert.Empty(t, stderr.String())
}

func TestRenderError(t *testing.T) {
	plain := renderError(fmt.Errorf("boom"))
	assert.Equal(t, "✗ boom\n", plain)

	structured := renderError(errors.New(errors.ErrConfig, "Bad config", "Fix it"))
	assert.NotContains(t, structured, "✗ ✗")
	assert.Contains(t, structured, "Bad config")
	assert.Contains(t, structured, "Fix it")
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "v1.0.0", formatVersion("1.0.0"))
	assert.Equal(t, "v1.0.0", formatVersion("v1.0.0"))
	assert.Equal(t, "", formatVersion(""))
}
