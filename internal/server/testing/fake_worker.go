// Package testing provides test doubles for the server package.
package testing

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/hasup/internal/frame"
	"github.com/rileyhilliard/hasup/internal/message"
	"github.com/rileyhilliard/hasup/internal/server"
)

// Request is one frame received by a FakeWorker.
type Request struct {
	Tag     frame.Tag
	Payload []byte
}

// FakeWorker is an in-process hasup worker server. It answers requests the
// way the reference servers do:
//
//   - tag 1 (Capacity) for its own id: Capacity with the current status;
//     a mismatched id gets no answer; an undecodable request gets an empty frame
//   - tag 2 (Configuration) STRT for its own id: Message YEP, otherwise NOP
//   - tag 3 (Message) CPCTY: Capacity with the current status
//
// Configure the exported fields before calling Start.
type FakeWorker struct {
	ID int

	// RejectStart answers every start command with NOP.
	RejectStart bool
	// GarbageStart answers the start command with an undecodable payload.
	GarbageStart bool
	// BreakPollAt makes the Nth CPCTY poll (1-based) fail mid-response: the
	// worker writes half of the length header and closes the connection.
	BreakPollAt int

	status   atomic.Int32
	listener net.Listener

	mu       sync.Mutex
	requests []Request
	polls    int
	conns    map[net.Conn]struct{}
	accepted int

	wg sync.WaitGroup
}

// NewFakeWorker creates a worker reporting the given status.
func NewFakeWorker(id int, status int32) *FakeWorker {
	w := &FakeWorker{ID: id, conns: make(map[net.Conn]struct{})}
	w.status.Store(status)
	return w
}

// Start listens on a free loopback port and serves in the background.
func (w *FakeWorker) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	w.listener = ln
	w.wg.Add(1)
	go w.acceptLoop()
	return nil
}

// Identity returns the registry entry pointing at this worker.
func (w *FakeWorker) Identity() server.Identity {
	addr := w.listener.Addr().(*net.TCPAddr)
	return server.Identity{ID: w.ID, Host: addr.IP.String(), Port: addr.Port}
}

// SetStatus changes the reported server_status.
func (w *FakeWorker) SetStatus(status int32) {
	w.status.Store(status)
}

// Requests returns a copy of every frame received so far.
func (w *FakeWorker) Requests() []Request {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Request, len(w.requests))
	copy(out, w.requests)
	return out
}

// Polls returns the number of CPCTY polls received.
func (w *FakeWorker) Polls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polls
}

// Accepted returns the number of connections accepted.
func (w *FakeWorker) Accepted() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.accepted
}

// Close stops the listener and drops every open connection.
func (w *FakeWorker) Close() error {
	if w.listener == nil {
		return nil
	}
	err := w.listener.Close()
	w.mu.Lock()
	for conn := range w.conns {
		_ = conn.Close()
	}
	w.mu.Unlock()
	w.wg.Wait()
	return err
}

func (w *FakeWorker) acceptLoop() {
	defer w.wg.Done()
	for {
		conn, err := w.listener.Accept()
		if err != nil {
			return
		}
		w.mu.Lock()
		w.conns[conn] = struct{}{}
		w.accepted++
		w.mu.Unlock()

		w.wg.Add(1)
		go w.serve(conn)
	}
}

func (w *FakeWorker) serve(conn net.Conn) {
	defer w.wg.Done()
	defer func() {
		w.mu.Lock()
		delete(w.conns, conn)
		w.mu.Unlock()
		_ = conn.Close()
	}()

	ch := frame.NewChannel(conn)
	var tag [1]byte
	for {
		if _, err := io.ReadFull(conn, tag[:]); err != nil {
			return
		}
		_, payload, err := ch.Receive()
		if err != nil {
			return
		}

		w.mu.Lock()
		w.requests = append(w.requests, Request{Tag: frame.Tag(tag[0]), Payload: payload})
		w.mu.Unlock()

		if err := w.handle(conn, ch, frame.Tag(tag[0]), payload); err != nil {
			return
		}
	}
}

var errHangUp = errors.New("hang up")

func (w *FakeWorker) handle(conn net.Conn, ch *frame.Channel, tag frame.Tag, payload []byte) error {
	now := time.Now().UnixMilli()

	switch tag {
	case frame.TagCapacityQuery:
		var req message.Capacity
		if err := req.Unmarshal(payload); err != nil {
			return ch.SendUntagged(nil)
		}
		if int(req.ServerID) != w.ID {
			return nil
		}
		return ch.SendMessageUntagged(w.capacity(now))

	case frame.TagConfigurationCommand:
		if w.GarbageStart {
			return ch.SendUntagged([]byte{0xff, 0xff})
		}
		var cfg message.Configuration
		resp := &message.Command{Demand: message.MethodStart, Response: message.ResponseNop}
		if err := cfg.Unmarshal(payload); err == nil &&
			int(cfg.ServerID) == w.ID && cfg.Method == message.MethodStart && !w.RejectStart {
			resp.Response = message.ResponseYep
			resp.Timestamp = now
		}
		return ch.SendMessageUntagged(resp)

	case frame.TagCapacityPollDemand:
		var cmd message.Command
		if err := cmd.Unmarshal(payload); err != nil || cmd.Demand != message.DemandCapacity {
			return nil
		}
		w.mu.Lock()
		w.polls++
		n := w.polls
		w.mu.Unlock()

		if w.BreakPollAt > 0 && n == w.BreakPollAt {
			_, _ = conn.Write([]byte{0x00, 0x00})
			return errHangUp
		}
		return ch.SendMessageUntagged(w.capacity(now))
	}
	return nil
}

func (w *FakeWorker) capacity(now int64) *message.Capacity {
	return &message.Capacity{
		ServerID:     int32(w.ID),
		ServerStatus: w.status.Load(),
		Timestamp:    now,
	}
}

// RefusingIdentity returns an identity on a loopback port with no listener,
// so connecting to it is refused.
func RefusingIdentity(id int) (server.Identity, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return server.Identity{}, err
	}
	addr := ln.Addr().(*net.TCPAddr)
	if err := ln.Close(); err != nil {
		return server.Identity{}, err
	}
	return server.Identity{ID: id, Host: addr.IP.String(), Port: addr.Port}, nil
}
