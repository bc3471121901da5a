// Package server manages the admin client's connection to one hasup worker
// server: dialing, the start command, and capacity queries.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rileyhilliard/hasup/internal/frame"
	"github.com/rileyhilliard/hasup/internal/logger"
	"github.com/rileyhilliard/hasup/internal/message"
)

// DefaultDialTimeout bounds a single connection attempt.
const DefaultDialTimeout = 10 * time.Second

// Dialer opens the stream to a server. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options configures a Connection. The zero value is usable.
type Options struct {
	// Dialer defaults to a net.Dialer with DefaultDialTimeout.
	Dialer Dialer
	// FrameTimeout bounds each request/response exchange. Zero disables the
	// deadline and exchanges block until the server answers or the context
	// is canceled.
	FrameTimeout time.Duration
	// MaxPayloadLength overrides frame.DefaultMaxPayloadLength when non-zero.
	MaxPayloadLength uint32
	Logger           logger.Logger
	// Now supplies request timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Connection is the admin client's link to one server. It exclusively owns
// its stream; it is not safe for concurrent use.
type Connection struct {
	identity Identity
	opts     Options
	log      logger.Logger

	conn    net.Conn
	channel *frame.Channel
	state   State
}

// NewConnection creates a Disconnected connection for identity.
func NewConnection(identity Identity, opts Options) *Connection {
	if opts.Dialer == nil {
		opts.Dialer = &net.Dialer{Timeout: DefaultDialTimeout}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	return &Connection{
		identity: identity,
		opts:     opts,
		log:      log,
		state:    Disconnected,
	}
}

// Identity returns the server this connection targets.
func (c *Connection) Identity() Identity {
	return c.identity
}

// ID returns the server id.
func (c *Connection) ID() int {
	return c.identity.ID
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	return c.state
}

// Connect opens the stream to the server.
func (c *Connection) Connect(ctx context.Context) error {
	if c.state != Disconnected {
		return &StateError{Server: c.identity.ID, Op: "connect", State: c.state}
	}

	c.state = Connecting
	c.log.Debug("dialing %s", c.identity.Address())

	conn, err := c.opts.Dialer.DialContext(ctx, "tcp", c.identity.Address())
	if err != nil {
		c.state = Failed
		return categorizeDialError(c.identity, err)
	}

	var channelOpts []frame.Option
	if c.opts.MaxPayloadLength > 0 {
		channelOpts = append(channelOpts, frame.WithMaxPayloadLength(c.opts.MaxPayloadLength))
	}
	c.conn = conn
	c.channel = frame.NewChannel(conn, channelOpts...)
	c.state = Connected
	c.log.Debug("connected to %s", c.identity.Address())
	return nil
}

// SendStart sends the STRT configuration command and reports whether the
// server accepted it (answered YEP). A refusal leaves the connection
// Connected. Stream or decoding failures return an RPCError and leave the
// connection Failed.
func (c *Connection) SendStart(ctx context.Context, faultToleranceLevel int) (bool, error) {
	const op = "start"
	if c.state != Connected {
		return false, &StateError{Server: c.identity.ID, Op: op, State: c.state}
	}

	req := message.NewStartConfiguration(faultToleranceLevel, c.identity.ID)
	var resp message.Command
	if err := c.exchange(ctx, op, frame.TagConfigurationCommand, req, &resp, true); err != nil {
		return false, err
	}

	c.log.Debug("start response: %s", resp.Response)
	if !resp.Accepted() {
		return false, nil
	}
	c.state = Started
	return true, nil
}

// QueryCapacity performs the ad-hoc capacity query: a Capacity request with
// server_status 0, answered by a Capacity. Allowed in any connected state.
// An empty response payload is rejected.
func (c *Connection) QueryCapacity(ctx context.Context) (*message.Capacity, error) {
	const op = "capacity query"
	if !c.state.HasChannel() {
		return nil, &StateError{Server: c.identity.ID, Op: op, State: c.state}
	}

	req := &message.Capacity{
		ServerID:     int32(c.identity.ID),
		ServerStatus: 0,
		Timestamp:    c.opts.Now().Unix(),
	}
	var resp message.Capacity
	if err := c.exchange(ctx, op, frame.TagCapacityQuery, req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PollCapacity performs the monitoring capacity query: a CPCTY Command
// answered by a Capacity. Requires Started or Monitoring; the first success
// moves the connection to Monitoring.
func (c *Connection) PollCapacity(ctx context.Context) (*message.Capacity, error) {
	const op = "capacity poll"
	if !c.state.CanPoll() {
		return nil, &StateError{Server: c.identity.ID, Op: op, State: c.state}
	}

	req := message.NewCapacityDemand(c.opts.Now().Unix())
	var resp message.Capacity
	if err := c.exchange(ctx, op, frame.TagCapacityPollDemand, req, &resp, true); err != nil {
		return nil, err
	}

	if c.state == Started {
		c.state = Monitoring
	}
	return &resp, nil
}

// Close releases the stream. It is safe to call repeatedly and in any
// state. A Failed connection stays Failed.
func (c *Connection) Close() error {
	if c.state != Failed {
		c.state = Disconnected
	}
	return c.release()
}

func (c *Connection) release() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.channel = nil
	return err
}

// aLongTimeAgo is a deadline in the past, used to interrupt blocked I/O.
var aLongTimeAgo = time.Unix(1, 0)

// exchange sends one request frame and decodes exactly one response frame.
// Any failure moves the connection to Failed and releases the stream.
func (c *Connection) exchange(ctx context.Context, op string, tag frame.Tag, req frame.Marshaler, resp frame.Unmarshaler, allowEmpty bool) error {
	conn := c.conn
	if err := conn.SetDeadline(c.deadline(ctx)); err != nil {
		return c.fail(ctx, op, err)
	}
	// The callback may still be running after stop returns and after the
	// connection releases c.conn, so it holds its own reference.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(aLongTimeAgo)
	})
	defer stop()

	if err := c.channel.SendMessage(tag, req); err != nil {
		return c.fail(ctx, op, err)
	}
	c.log.Debug("sent %s frame (%d bytes)", tag, req.Size())

	length, payload, err := c.channel.Receive()
	if err != nil {
		return c.fail(ctx, op, err)
	}
	c.log.Debug("received response (%d bytes)", length)

	if length == 0 && !allowEmpty {
		return c.fail(ctx, op, frame.NewMalformed(errors.New("empty response payload")))
	}
	if err := resp.Unmarshal(payload); err != nil {
		return c.fail(ctx, op, frame.NewMalformed(err))
	}
	return nil
}

// deadline combines the frame timeout with the context deadline. The zero
// time clears any deadline.
func (c *Connection) deadline(ctx context.Context) time.Time {
	var d time.Time
	if c.opts.FrameTimeout > 0 {
		d = time.Now().Add(c.opts.FrameTimeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	return d
}

func (c *Connection) fail(ctx context.Context, op string, err error) error {
	rpcErr := &RPCError{Server: c.identity.ID, Op: op, Cause: err}
	if ctxErr := ctx.Err(); ctxErr != nil {
		rpcErr.Cause = fmt.Errorf("%w: %v", ctxErr, err)
	} else if isTimeout(err) {
		rpcErr.Timeout = true
	}

	c.state = Failed
	if closeErr := c.release(); closeErr != nil {
		c.log.Debug("close after failure: %v", closeErr)
	}
	c.log.Debug("%s failed: %v", op, err)
	return rpcErr
}
