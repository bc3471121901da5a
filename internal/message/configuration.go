package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Configuration field numbers.
const (
	configurationFaultTolerance protowire.Number = 1
	configurationMethod         protowire.Number = 2
	configurationServerID       protowire.Number = 3
)

// MethodStart is the command code that tells a server to start its services.
const MethodStart = "STRT"

// Configuration is the start command sent to a server.
type Configuration struct {
	FaultToleranceLevel int32
	Method              string
	ServerID            int32
}

// NewStartConfiguration builds the STRT command for one server.
func NewStartConfiguration(faultToleranceLevel int, serverID int) *Configuration {
	return &Configuration{
		FaultToleranceLevel: int32(faultToleranceLevel),
		Method:              MethodStart,
		ServerID:            int32(serverID),
	}
}

// Size returns the encoded length of c in bytes.
func (c *Configuration) Size() int {
	return sizeVarintField(configurationFaultTolerance, int32Wire(c.FaultToleranceLevel)) +
		sizeStringField(configurationMethod, c.Method) +
		sizeVarintField(configurationServerID, int32Wire(c.ServerID))
}

// Marshal encodes c.
func (c *Configuration) Marshal() []byte {
	b := make([]byte, 0, c.Size())
	b = appendVarintField(b, configurationFaultTolerance, int32Wire(c.FaultToleranceLevel))
	b = appendStringField(b, configurationMethod, c.Method)
	b = appendVarintField(b, configurationServerID, int32Wire(c.ServerID))
	return b
}

// Unmarshal decodes b into c, replacing its contents.
func (c *Configuration) Unmarshal(b []byte) error {
	*c = Configuration{}
	err := walk("Configuration", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case configurationFaultTolerance:
			return consumeVarint(typ, b, func(v uint64) { c.FaultToleranceLevel = int32(v) })
		case configurationMethod:
			return consumeString(typ, b, &c.Method)
		case configurationServerID:
			return consumeVarint(typ, b, func(v uint64) { c.ServerID = int32(v) })
		}
		return 0
	})
	if err != nil {
		return err
	}
	return checkUTF8("Configuration", "method", c.Method)
}

func (c *Configuration) String() string {
	return fmt.Sprintf("Configuration{fault_tolerance_level: %d, method: %q, server_id: %d}",
		c.FaultToleranceLevel, c.Method, c.ServerID)
}
