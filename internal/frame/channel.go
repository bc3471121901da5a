// Package frame implements the hasup length-prefixed framing protocol.
//
// Requests sent by the admin client carry a type tag:
//
//	[1 byte tag] [4 bytes payload length, big-endian uint32] [payload]
//
// Responses, and frames forwarded to the plotter, carry no tag:
//
//	[4 bytes payload length, big-endian uint32] [payload]
//
// The length always equals the exact payload byte count. A zero length is
// a valid, empty payload.
package frame

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Tag identifies the payload type of a request frame.
type Tag byte

const (
	// TagCapacityQuery carries a Capacity request (ad-hoc query).
	TagCapacityQuery Tag = 1
	// TagConfigurationCommand carries a Configuration (start command).
	TagConfigurationCommand Tag = 2
	// TagCapacityPollDemand carries a Command with the CPCTY demand.
	TagCapacityPollDemand Tag = 3
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagCapacityQuery:
		return "CapacityQuery"
	case TagConfigurationCommand:
		return "ConfigurationCommand"
	case TagCapacityPollDemand:
		return "CapacityPollDemand"
	default:
		return fmt.Sprintf("Tag(%d)", byte(t))
	}
}

// lengthFieldSize is the size of the big-endian payload length prefix.
const lengthFieldSize = 4

// DefaultMaxPayloadLength bounds the payload a peer may announce. Capacity
// and Command payloads are a few dozen bytes; 16 MB is generous.
const DefaultMaxPayloadLength = 16 * 1024 * 1024

// Marshaler is the encode half of the message codec contract.
type Marshaler interface {
	Size() int
	Marshal() []byte
}

// Unmarshaler is the decode half of the message codec contract.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Channel reads and writes frames over a byte stream. A Channel is not safe
// for concurrent use; each connection owns exactly one.
type Channel struct {
	r          io.Reader
	w          *bufio.Writer
	maxPayload uint32
}

// Option configures a Channel.
type Option func(*Channel)

// WithMaxPayloadLength overrides DefaultMaxPayloadLength.
func WithMaxPayloadLength(n uint32) Option {
	return func(c *Channel) {
		c.maxPayload = n
	}
}

// NewChannel wraps rw. Writes are buffered per frame and flushed at the end
// of each Send.
func NewChannel(rw io.ReadWriter, opts ...Option) *Channel {
	c := &Channel{
		r:          rw,
		w:          bufio.NewWriter(fullWriter{w: rw}),
		maxPayload: DefaultMaxPayloadLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send writes one request frame: tag, length, payload, then flushes.
func (c *Channel) Send(tag Tag, payload []byte) error {
	if err := c.w.WriteByte(byte(tag)); err != nil {
		return fmt.Errorf("write frame tag: %w", err)
	}
	return c.writeBody(payload)
}

// SendUntagged writes one frame without a tag byte: length, payload, then
// flushes.
func (c *Channel) SendUntagged(payload []byte) error {
	return c.writeBody(payload)
}

// SendMessage encodes m and sends it as a request frame with the given tag.
func (c *Channel) SendMessage(tag Tag, m Marshaler) error {
	return c.Send(tag, m.Marshal())
}

// SendMessageUntagged encodes m and sends it without a tag byte.
func (c *Channel) SendMessageUntagged(m Marshaler) error {
	return c.SendUntagged(m.Marshal())
}

func (c *Channel) writeBody(payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return &ProtocolError{Reason: Malformed, Cause: fmt.Errorf("payload of %d bytes does not fit a 32-bit length", len(payload))}
	}

	var header [lengthFieldSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := c.w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if len(payload) > 0 {
		if _, err := c.w.Write(payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}

// Receive reads one untagged frame and returns its length and payload.
// Short reads are retried until the frame is complete. A stream that ends
// early yields a ProtocolError with reason IncompleteHeader or
// IncompleteBody; other stream failures are returned wrapped.
func (c *Channel) Receive() (uint32, []byte, error) {
	var header [lengthFieldSize]byte
	if n, err := io.ReadFull(c.r, header[:]); err != nil {
		if isEndOfStream(err) {
			return 0, nil, &ProtocolError{Reason: IncompleteHeader, Got: n, Want: lengthFieldSize, Cause: err}
		}
		return 0, nil, fmt.Errorf("read frame length: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > c.maxPayload {
		return length, nil, &ProtocolError{
			Reason: Malformed,
			Cause:  fmt.Errorf("payload length %d exceeds maximum %d", length, c.maxPayload),
		}
	}

	payload := make([]byte, length)
	if length > 0 {
		if n, err := io.ReadFull(c.r, payload); err != nil {
			if isEndOfStream(err) {
				return length, nil, &ProtocolError{Reason: IncompleteBody, Got: n, Want: int(length), Cause: err}
			}
			return length, nil, fmt.Errorf("read frame payload: %w", err)
		}
	}
	return length, payload, nil
}

// ReceiveMessage reads one untagged frame and decodes it into m. It returns
// the payload length. Decoding failures are reported as Malformed.
func (c *Channel) ReceiveMessage(m Unmarshaler) (uint32, error) {
	length, payload, err := c.Receive()
	if err != nil {
		return length, err
	}
	if err := m.Unmarshal(payload); err != nil {
		return length, NewMalformed(err)
	}
	return length, nil
}

func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// fullWriter retries short writes until p is written or the stream fails.
type fullWriter struct {
	w io.Writer
}

func (f fullWriter) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := f.w.Write(p[written:])
		written += n
		if err != nil {
			if errors.Is(err, io.ErrShortWrite) && n > 0 {
				continue
			}
			return written, err
		}
		if n == 0 {
			return written, io.ErrNoProgress
		}
	}
	return written, nil
}
