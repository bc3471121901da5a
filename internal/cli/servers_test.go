package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hasup/internal/config"
	"github.com/rileyhilliard/hasup/internal/server"
)

func TestServersList(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{
		{ID: 2, Host: "worker-b", Port: 7002},
		{ID: 1, Host: "worker-a", Port: 7001},
	}, -1)

	var out bytes.Buffer
	require.NoError(t, serversList(cfgPath, false, &out))

	output := out.String()
	assert.Contains(t, output, "ROLE")
	assert.Contains(t, output, "worker-a:7001")
	assert.Contains(t, output, "worker-b:7002")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("worker-a")), bytes.Index(out.Bytes(), []byte("worker-b")))
	assert.NotContains(t, output, "plotter", "disabled plotter is not listed")
}

func TestServersListJSON(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{{ID: 3, Host: "worker-c", Port: 7003}}, -1)

	var out bytes.Buffer
	require.NoError(t, serversList(cfgPath, true, &out))

	var env struct {
		Success bool          `json:"success"`
		Data    ServersOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, cfgPath, env.Data.ConfigPath)
	assert.Equal(t, []ServerOutput{{ID: 3, Host: "worker-c", Port: 7003, Address: "worker-c:7003"}}, env.Data.Servers)
	assert.False(t, env.Data.Plotter.Enabled)
}

func TestServersSet(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{{ID: 1, Host: "worker-a", Port: 7001}}, -1)

	var out bytes.Buffer
	require.NoError(t, serversSet(cfgPath, "4", "worker-d:7104", &out))
	assert.Contains(t, out.String(), "server 4 set to worker-d:7104")

	require.NoError(t, serversSet(cfgPath, "1", "10.0.0.5:7201", &bytes.Buffer{}))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.ElementsMatch(t, []config.Server{
		{ID: 1, Host: "10.0.0.5", Port: 7201},
		{ID: 4, Host: "worker-d", Port: 7104},
	}, cfg.Servers)
}

func TestServersSetRejectsBadInput(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{{ID: 1, Host: "worker-a", Port: 7001}}, -1)
	before, err := os.ReadFile(cfgPath)
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		address string
		want    string
	}{
		{name: "zero id", id: "0", address: "worker:7001", want: "not a valid server id"},
		{name: "missing port", id: "2", address: "worker", want: "not a host:port address"},
		{name: "port out of range", id: "2", address: "worker:70000", want: "not a valid port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := serversSet(cfgPath, tt.id, tt.address, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	after, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestServersSetMissingConfig(t *testing.T) {
	err := serversSet(filepath.Join(t.TempDir(), "missing.yaml"), "1", "worker:7001", &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ErrCodeConfigNotFound, ErrorToJSON(err).Code)
}
