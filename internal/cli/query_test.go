package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/frame"
	"github.com/rileyhilliard/hasup/internal/server"
	servertest "github.com/rileyhilliard/hasup/internal/server/testing"
)

func TestQueryCommand(t *testing.T) {
	worker := servertest.NewFakeWorker(1, 42)
	id := startWorker(t, worker)
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id}, -1)

	var out bytes.Buffer
	err := queryCommand(context.Background(), QueryOptions{ConfigPath: cfgPath, ServerArg: "1"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "✓ "+id.String()+" status 42")
	assert.Contains(t, out.String(), "reported at")

	requests := worker.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, frame.TagCapacityQuery, requests[0].Tag)
	assert.Equal(t, 1, worker.Accepted())
}

func TestQueryCommandJSON(t *testing.T) {
	id := startWorker(t, servertest.NewFakeWorker(2, 7))
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id}, -1)

	var out bytes.Buffer
	err := queryCommand(context.Background(), QueryOptions{ConfigPath: cfgPath, ServerArg: "2", JSON: true}, &out)
	require.NoError(t, err)

	var env struct {
		Success bool        `json:"success"`
		Data    QueryOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 2, env.Data.ServerID)
	assert.Equal(t, id.Address(), env.Data.Address)
	assert.Equal(t, int32(7), env.Data.Status)
	assert.NotZero(t, env.Data.Timestamp)
}

func TestQueryCommandUnknownServer(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{{ID: 1, Host: "127.0.0.1", Port: 7001}}, -1)

	err := queryCommand(context.Background(), QueryOptions{ConfigPath: cfgPath, ServerArg: "9"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No server with id 9")
	assert.Equal(t, ErrCodeServerNotFound, ErrorToJSON(err).Code)
}

func TestQueryCommandInvalidServerID(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{{ID: 1, Host: "127.0.0.1", Port: 7001}}, -1)

	err := queryCommand(context.Background(), QueryOptions{ConfigPath: cfgPath, ServerArg: "two"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "'two' is not a valid server id")
}

func TestQueryCommandRefused(t *testing.T) {
	id, err := servertest.RefusingIdentity(3)
	require.NoError(t, err)
	cfgPath := writeConfig(t, t.TempDir(), []server.Identity{id}, -1)

	err = queryCommand(context.Background(), QueryOptions{ConfigPath: cfgPath, ServerArg: "3"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConnect))

	jsonErr := ErrorToJSON(err)
	assert.Equal(t, ErrCodeConnectRefused, jsonErr.Code)
	assert.Contains(t, jsonErr.Message, "Cannot connect to server 3")
}

func TestFormatServerTimestamp(t *testing.T) {
	assert.Empty(t, formatServerTimestamp(0))
	assert.Equal(t, formatServerTimestamp(1700000000), formatServerTimestamp(1700000000000))
}
