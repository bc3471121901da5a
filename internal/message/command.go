package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Command field numbers ("Message" in the schema).
const (
	commandDemand    protowire.Number = 1
	commandResponse  protowire.Number = 2
	commandTimestamp protowire.Number = 3
)

// DemandCapacity is the poll demand asking a started server for its load.
const DemandCapacity = "CPCTY"

// Response is the reply code carried by a Command.
type Response int32

const (
	ResponseUnknown Response = 0
	ResponseYep     Response = 1
	ResponseNop     Response = 2
)

// String returns the schema name of the response code.
func (r Response) String() string {
	switch r {
	case ResponseUnknown:
		return "UNKNOWN"
	case ResponseYep:
		return "YEP"
	case ResponseNop:
		return "NOP"
	default:
		return fmt.Sprintf("Response(%d)", int32(r))
	}
}

// Command is the generic demand/response envelope. Servers answer the start
// command with one; the admin client sends one to demand a capacity reading.
type Command struct {
	Demand    string
	Response  Response
	Timestamp int64
}

// NewCapacityDemand builds the CPCTY poll request.
func NewCapacityDemand(timestamp int64) *Command {
	return &Command{
		Demand:    DemandCapacity,
		Response:  ResponseUnknown,
		Timestamp: timestamp,
	}
}

// Accepted reports whether the server answered YEP.
func (c *Command) Accepted() bool {
	return c.Response == ResponseYep
}

// Size returns the encoded length of c in bytes.
func (c *Command) Size() int {
	return sizeStringField(commandDemand, c.Demand) +
		sizeVarintField(commandResponse, int32Wire(int32(c.Response))) +
		sizeVarintField(commandTimestamp, uint64(c.Timestamp))
}

// Marshal encodes c.
func (c *Command) Marshal() []byte {
	b := make([]byte, 0, c.Size())
	b = appendStringField(b, commandDemand, c.Demand)
	b = appendVarintField(b, commandResponse, int32Wire(int32(c.Response)))
	b = appendVarintField(b, commandTimestamp, uint64(c.Timestamp))
	return b
}

// Unmarshal decodes b into c, replacing its contents. Unrecognized
// response codes are kept as-is; proto3 enums are open.
func (c *Command) Unmarshal(b []byte) error {
	*c = Command{}
	err := walk("Message", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case commandDemand:
			return consumeString(typ, b, &c.Demand)
		case commandResponse:
			return consumeVarint(typ, b, func(v uint64) { c.Response = Response(int32(v)) })
		case commandTimestamp:
			return consumeVarint(typ, b, func(v uint64) { c.Timestamp = int64(v) })
		}
		return 0
	})
	if err != nil {
		return err
	}
	return checkUTF8("Message", "demand", c.Demand)
}

func (c *Command) String() string {
	return fmt.Sprintf("Message{demand: %q, response: %s, timestamp: %d}",
		c.Demand, c.Response, c.Timestamp)
}
