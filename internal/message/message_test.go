package message

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestConfigurationEncoding(t *testing.T) {
	cfg := NewStartConfiguration(2, 1)

	want := []byte{
		0x08, 0x02, // fault_tolerance_level = 2
		0x12, 0x04, 'S', 'T', 'R', 'T', // method = "STRT"
		0x18, 0x01, // server_id = 1
	}
	assert.Equal(t, want, cfg.Marshal())
	assert.Equal(t, len(want), cfg.Size())

	var got Configuration
	require.NoError(t, got.Unmarshal(want))
	assert.Equal(t, *cfg, got)
}

func TestCapacityDemandEncoding(t *testing.T) {
	cmd := NewCapacityDemand(0)

	// UNKNOWN and a zero timestamp are omitted in proto3.
	want := []byte{0x0a, 0x05, 'C', 'P', 'C', 'T', 'Y'}
	assert.Equal(t, want, cmd.Marshal())
	assert.Equal(t, ResponseUnknown, cmd.Response)
}

func TestCapacityRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Capacity
	}{
		{name: "request", in: Capacity{ServerID: 3, ServerStatus: 0, Timestamp: 1700000000}},
		{name: "response in millis", in: Capacity{ServerID: 1, ServerStatus: 42, Timestamp: 1700000000123}},
		{name: "zero", in: Capacity{}},
		{name: "negative id", in: Capacity{ServerID: -1, ServerStatus: -7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.in.Marshal()
			assert.Len(t, b, tt.in.Size())

			var out Capacity
			require.NoError(t, out.Unmarshal(b))
			assert.Equal(t, tt.in, out)
		})
	}
}

func TestCapacityEmptyPayload(t *testing.T) {
	c := Capacity{ServerID: 9}
	require.NoError(t, c.Unmarshal(nil))
	assert.Equal(t, Capacity{}, c, "empty payload decodes to the zero message")
}

func TestCommandResponses(t *testing.T) {
	tests := []struct {
		response Response
		accepted bool
		name     string
	}{
		{ResponseUnknown, false, "UNKNOWN"},
		{ResponseYep, true, "YEP"},
		{ResponseNop, false, "NOP"},
		{Response(7), false, "Response(7)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Command{Demand: MethodStart, Response: tt.response, Timestamp: 1700000000123}

			var out Command
			require.NoError(t, out.Unmarshal(in.Marshal()))
			assert.Equal(t, in, out)
			assert.Equal(t, tt.accepted, out.Accepted())
			assert.Equal(t, tt.name, out.Response.String())
		})
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	b := (&Capacity{ServerID: 2, ServerStatus: 5}).Marshal()
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendString(b, "extra")
	b = protowire.AppendTag(b, 10, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 1)

	var c Capacity
	require.NoError(t, c.Unmarshal(b))
	assert.Equal(t, int32(2), c.ServerID)
	assert.Equal(t, int32(5), c.ServerStatus)
}

func TestMismatchedWireTypeSkipped(t *testing.T) {
	// server_id sent as a string is treated as an unknown field.
	b := protowire.AppendTag(nil, capacityServerID, protowire.BytesType)
	b = protowire.AppendString(b, "1")

	var c Capacity
	require.NoError(t, c.Unmarshal(b))
	assert.Equal(t, int32(0), c.ServerID)
}

func TestMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		target  interface{ Unmarshal([]byte) error }
	}{
		{name: "truncated varint", payload: []byte{0x08, 0x80}, target: &Capacity{}},
		{name: "truncated string", payload: []byte{0x0a, 0x05, 'C', 'P'}, target: &Command{}},
		{name: "bad tag", payload: []byte{0x00}, target: &Capacity{}},
		{name: "invalid utf8", payload: []byte{0x12, 0x02, 0xff, 0xfe}, target: &Configuration{}},
		{name: "text garbage", payload: []byte("hello world"), target: &Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Unmarshal(tt.payload)
			require.Error(t, err)

			var decErr *DecodeError
			assert.True(t, errors.As(err, &decErr))
		})
	}
}

func TestTruncatedCauseIsUnexpectedEOF(t *testing.T) {
	var c Capacity
	err := c.Unmarshal([]byte{0x10})
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStringers(t *testing.T) {
	assert.Contains(t, (&Capacity{ServerID: 1, ServerStatus: 42}).String(), "server_status: 42")
	assert.Contains(t, NewStartConfiguration(1, 3).String(), `method: "STRT"`)
	assert.Contains(t, NewCapacityDemand(5).String(), `demand: "CPCTY"`)
}
