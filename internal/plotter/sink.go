// Package plotter forwards capacity samples to the optional visualization
// endpoint. The plotter is strictly best-effort: no failure here is ever
// propagated to the monitoring loop.
package plotter

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rileyhilliard/hasup/internal/frame"
	"github.com/rileyhilliard/hasup/internal/logger"
	"github.com/rileyhilliard/hasup/internal/message"
)

// DefaultDialTimeout bounds the single connection attempt to the plotter.
const DefaultDialTimeout = 5 * time.Second

// Dialer opens the stream to the plotter. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Options configures a Sink.
type Options struct {
	Dialer Dialer
	// WriteTimeout bounds each forwarded frame. Zero means no deadline.
	WriteTimeout time.Duration
	Logger       logger.Logger
}

// Sink is the connection to the plotter. It is present only while the stream
// is usable; once a connect or write fails it is absent for the rest of the
// run and Forward becomes a no-op. Safe for concurrent use.
type Sink struct {
	address string
	opts    Options
	log     logger.Logger

	mu        sync.Mutex
	conn      net.Conn
	channel   *frame.Channel
	forwarded int
	dropped   bool
}

// NewSink creates an absent sink for host:port.
func NewSink(host string, port int, opts Options) *Sink {
	if opts.Dialer == nil {
		opts.Dialer = &net.Dialer{Timeout: DefaultDialTimeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	return &Sink{
		address: net.JoinHostPort(host, strconv.Itoa(port)),
		opts:    opts,
		log:     log,
	}
}

// Address returns the plotter dial address.
func (s *Sink) Address() string {
	return s.address
}

// Connect makes the one connection attempt. Failure is logged and the sink
// stays absent; the error is returned for reporting only.
func (s *Sink) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil || s.dropped {
		return nil
	}

	conn, err := s.opts.Dialer.DialContext(ctx, "tcp", s.address)
	if err != nil {
		s.dropped = true
		s.log.Warn("plotter unavailable at %s: %v", s.address, err)
		return err
	}
	s.conn = conn
	s.channel = frame.NewChannel(conn)
	s.log.Debug("connected to plotter at %s", s.address)
	return nil
}

// Available reports whether the sink is present.
func (s *Sink) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Forwarded returns how many samples were written successfully.
func (s *Sink) Forwarded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forwarded
}

// Forward writes the capacity as one untagged frame. When the sink is absent
// it does nothing. A write failure drops the sink permanently.
func (s *Sink) Forward(c *message.Capacity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return
	}

	if s.opts.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	if err := s.channel.SendMessageUntagged(c); err != nil {
		s.log.Warn("plotter write failed, no longer forwarding samples: %v", err)
		s.drop()
		return
	}
	s.forwarded++
}

// Close releases the stream. Safe to call repeatedly.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.channel = nil
	return err
}

func (s *Sink) drop() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn = nil
	s.channel = nil
	s.dropped = true
}
