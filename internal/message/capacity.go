package message

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Capacity field numbers.
const (
	capacityServerID     protowire.Number = 1
	capacityServerStatus protowire.Number = 2
	capacityTimestamp    protowire.Number = 3
)

// Capacity reports a server's load. On requests ServerStatus is 0; on
// responses it carries the server's subscriber occupancy.
type Capacity struct {
	ServerID     int32
	ServerStatus int32
	// Timestamp is whatever the sender put there: the admin client sends
	// unix seconds, the reference servers reply with unix milliseconds.
	Timestamp int64
}

// Size returns the encoded length of c in bytes.
func (c *Capacity) Size() int {
	return sizeVarintField(capacityServerID, int32Wire(c.ServerID)) +
		sizeVarintField(capacityServerStatus, int32Wire(c.ServerStatus)) +
		sizeVarintField(capacityTimestamp, uint64(c.Timestamp))
}

// Marshal encodes c.
func (c *Capacity) Marshal() []byte {
	b := make([]byte, 0, c.Size())
	b = appendVarintField(b, capacityServerID, int32Wire(c.ServerID))
	b = appendVarintField(b, capacityServerStatus, int32Wire(c.ServerStatus))
	b = appendVarintField(b, capacityTimestamp, uint64(c.Timestamp))
	return b
}

// Unmarshal decodes b into c, replacing its contents. An empty payload
// decodes to the zero Capacity.
func (c *Capacity) Unmarshal(b []byte) error {
	*c = Capacity{}
	return walk("Capacity", b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case capacityServerID:
			return consumeVarint(typ, b, func(v uint64) { c.ServerID = int32(v) })
		case capacityServerStatus:
			return consumeVarint(typ, b, func(v uint64) { c.ServerStatus = int32(v) })
		case capacityTimestamp:
			return consumeVarint(typ, b, func(v uint64) { c.Timestamp = int64(v) })
		}
		return 0
	})
}

func (c *Capacity) String() string {
	return fmt.Sprintf("Capacity{server_id: %d, server_status: %d, timestamp: %d}",
		c.ServerID, c.ServerStatus, c.Timestamp)
}
