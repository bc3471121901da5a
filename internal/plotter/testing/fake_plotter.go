// Package testing provides a plotter double for tests.
package testing

import (
	"net"
	"sync"
	"time"

	"github.com/rileyhilliard/hasup/internal/frame"
	"github.com/rileyhilliard/hasup/internal/message"
)

// FakePlotter accepts plotter connections and records every Capacity frame.
type FakePlotter struct {
	// HangUpAfter closes the connection after this many frames. Zero never.
	HangUpAfter int

	listener net.Listener

	mu       sync.Mutex
	received []message.Capacity
	conns    map[net.Conn]struct{}
	notify   chan struct{}

	wg sync.WaitGroup
}

// NewFakePlotter creates an idle plotter.
func NewFakePlotter() *FakePlotter {
	return &FakePlotter{
		conns:  make(map[net.Conn]struct{}),
		notify: make(chan struct{}, 1),
	}
}

// Start listens on a free loopback port.
func (p *FakePlotter) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	p.listener = ln
	p.wg.Add(1)
	go p.acceptLoop()
	return nil
}

// Host returns the listen host.
func (p *FakePlotter) Host() string {
	return p.listener.Addr().(*net.TCPAddr).IP.String()
}

// Port returns the listen port.
func (p *FakePlotter) Port() int {
	return p.listener.Addr().(*net.TCPAddr).Port
}

// Received returns a copy of the samples decoded so far.
func (p *FakePlotter) Received() []message.Capacity {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]message.Capacity, len(p.received))
	copy(out, p.received)
	return out
}

// WaitFor blocks until at least n samples arrived or timeout elapses.
func (p *FakePlotter) WaitFor(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		p.mu.Lock()
		got := len(p.received)
		p.mu.Unlock()
		if got >= n {
			return true
		}
		select {
		case <-p.notify:
		case <-deadline:
			return false
		}
	}
}

// Close stops the listener and drops every connection.
func (p *FakePlotter) Close() error {
	if p.listener == nil {
		return nil
	}
	err := p.listener.Close()
	p.mu.Lock()
	for conn := range p.conns {
		_ = conn.Close()
	}
	p.mu.Unlock()
	p.wg.Wait()
	return err
}

func (p *FakePlotter) acceptLoop() {
	defer p.wg.Done()
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		p.mu.Lock()
		p.conns[conn] = struct{}{}
		p.mu.Unlock()

		p.wg.Add(1)
		go p.serve(conn)
	}
}

func (p *FakePlotter) serve(conn net.Conn) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		delete(p.conns, conn)
		p.mu.Unlock()
		_ = conn.Close()
	}()

	ch := frame.NewChannel(conn)
	frames := 0
	for {
		var c message.Capacity
		if _, err := ch.ReceiveMessage(&c); err != nil {
			return
		}
		frames++

		p.mu.Lock()
		p.received = append(p.received, c)
		p.mu.Unlock()
		select {
		case p.notify <- struct{}{}:
		default:
		}

		if p.HangUpAfter > 0 && frames >= p.HangUpAfter {
			return
		}
	}
}
