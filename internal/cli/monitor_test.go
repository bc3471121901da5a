package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hasup/internal/config"
	"github.com/rileyhilliard/hasup/internal/server"
	servertest "github.com/rileyhilliard/hasup/internal/server/testing"
)

func TestMonitorCommandEndsWhenEveryServerIsDropped(t *testing.T) {
	flaky := servertest.NewFakeWorker(1, 42)
	flaky.BreakPollAt = 2
	refusing := servertest.NewFakeWorker(2, 0)
	refusing.RejectStart = true

	id1 := startWorker(t, flaky)
	id2 := startWorker(t, refusing)
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id1, id2}, 1)

	var out bytes.Buffer
	err := monitorCommand(context.Background(), MonitorOptions{ConfigPath: cfgPath}, &out)
	require.NoError(t, err)

	output := out.String()
	assert.Contains(t, output, "hasup-admin")
	assert.Contains(t, output, "fault tolerance level 1")
	assert.Contains(t, output, id1.String()+" started")
	assert.Contains(t, output, id2.String()+" refused the start command")
	assert.Contains(t, output, "monitoring 1 server")
	assert.Contains(t, output, id1.String()+" status 42")
	assert.Contains(t, output, id1.String()+" dropped")
	assert.Contains(t, output, "Session summary")
	assert.Contains(t, output, "lost")
	assert.Contains(t, output, "rejected")

	assert.Equal(t, 2, flaky.Polls())
	assert.Zero(t, refusing.Polls())
}

func TestMonitorCommandInterrupted(t *testing.T) {
	worker := servertest.NewFakeWorker(1, 5)
	id := startWorker(t, worker)
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := monitorCommand(ctx, MonitorOptions{ConfigPath: cfgPath}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "(interrupted)")
	assert.Contains(t, out.String(), "active")
	assert.Greater(t, worker.Polls(), 0)
}

func TestMonitorCommandNoServerStarted(t *testing.T) {
	id, err := servertest.RefusingIdentity(1)
	require.NoError(t, err)
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id}, 1)

	var out bytes.Buffer
	require.NoError(t, monitorCommand(context.Background(), MonitorOptions{ConfigPath: cfgPath}, &out))

	assert.Contains(t, out.String(), id.String()+" unreachable")
	assert.Contains(t, out.String(), "no server started")
}

func TestMonitorCommandInvalidFaultTolerance(t *testing.T) {
	worker := servertest.NewFakeWorker(1, 0)
	id := startWorker(t, worker)
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, []server.Identity{id}, -1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFaultToleranceFile),
		[]byte("fault_tolerance_level = many\n"), 0644))

	var out bytes.Buffer
	err := monitorCommand(context.Background(), MonitorOptions{ConfigPath: cfgPath}, &out)
	require.Error(t, err)
	assert.Equal(t, ErrCodeFaultTolerance, ErrorToJSON(err).Code)
	assert.Zero(t, worker.Accepted(), "no server is contacted")
	assert.Empty(t, out.String())
}

func TestMonitorCommandFlags(t *testing.T) {
	skipped := servertest.NewFakeWorker(1, 0)
	chosen := servertest.NewFakeWorker(2, 9)
	chosen.BreakPollAt = 1
	id1 := startWorker(t, skipped)
	id2 := startWorker(t, chosen)
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id1, id2}, -1)

	var flags SessionFlags
	fs := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
	AddSessionFlags(fs, &flags)
	require.NoError(t, fs.Parse([]string{"--servers", "2", "--fault-tolerance", "3", "--interval", "5ms"}))

	var out bytes.Buffer
	err := monitorCommand(context.Background(), MonitorOptions{
		ConfigPath: cfgPath,
		Flags:      &flags,
		FlagSet:    fs,
	}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "fault tolerance level 3")
	assert.Contains(t, out.String(), id2.String()+" started")
	assert.NotContains(t, out.String(), id1.String())
	assert.Zero(t, skipped.Accepted())
}

func TestMonitorCommandTUIFallsBackWithoutTerminal(t *testing.T) {
	id, err := servertest.RefusingIdentity(1)
	require.NoError(t, err)
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id}, 1)

	var out bytes.Buffer
	require.NoError(t, monitorCommand(context.Background(), MonitorOptions{ConfigPath: cfgPath, TUI: true}, &out))

	assert.Contains(t, out.String(), "--tui needs a terminal")
	assert.Contains(t, out.String(), "Session summary")
}

func TestMonitorCommandUnknownServerFlag(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{{ID: 1, Host: "127.0.0.1", Port: 7001}}, 1)

	var flags SessionFlags
	fs := pflag.NewFlagSet("monitor", pflag.ContinueOnError)
	AddSessionFlags(fs, &flags)
	require.NoError(t, fs.Parse([]string{"--servers", "1,8"}))

	err := monitorCommand(context.Background(), MonitorOptions{ConfigPath: cfgPath, Flags: &flags, FlagSet: fs}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ErrCodeServerNotFound, ErrorToJSON(err).Code)
}
