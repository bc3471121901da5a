package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rileyhilliard/hasup/internal/logger"
	"github.com/rileyhilliard/hasup/internal/message"
	"github.com/rileyhilliard/hasup/internal/server"
)

// Default session timing, matching the reference deployment.
const (
	DefaultStartDelay = time.Second
	DefaultInterval   = 5 * time.Second
)

// Conn is the loop's view of one server connection. *server.Connection
// satisfies it.
type Conn interface {
	ID() int
	Identity() server.Identity
	Connect(ctx context.Context) error
	SendStart(ctx context.Context, faultToleranceLevel int) (bool, error)
	PollCapacity(ctx context.Context) (*message.Capacity, error)
	Close() error
}

// Sink is the loop's view of the plotter. *plotter.Sink satisfies it.
// Forward must never block the loop on a failed plotter.
type Sink interface {
	Connect(ctx context.Context) error
	Forward(*message.Capacity)
	Available() bool
	Close() error
}

// Options configures a monitoring session.
type Options struct {
	// Servers is the registry. Bootstrap visits it in ascending id order.
	Servers []server.Identity
	// FaultToleranceLevel is sent with every start command.
	FaultToleranceLevel int

	// StartDelay separates consecutive bootstrap attempts.
	StartDelay time.Duration
	// Interval is the sleep after each monitoring pass.
	Interval time.Duration
	// Parallel polls every active server concurrently within a pass.
	Parallel bool

	// Dial creates the connection for one server. Defaults to
	// server.NewConnection with Connection.
	Dial       func(server.Identity) Conn
	Connection server.Options

	// Sink receives every successful capacity reading. Nil disables the plotter.
	Sink     Sink
	Reporter Reporter
	// History records every reading when set.
	History *History
	Logger  logger.Logger

	// After and Now default to time.After and time.Now.
	After func(time.Duration) <-chan time.Time
	Now   func() time.Time
}

// Outcome is how a server's participation in the session ended.
type Outcome int

const (
	// OutcomeActive means the server was still being polled when the session ended.
	OutcomeActive Outcome = iota
	// OutcomeUnreachable means Connect failed.
	OutcomeUnreachable
	// OutcomeRejected means the server answered the start command with NOP.
	OutcomeRejected
	// OutcomeStartFailed means the start exchange itself failed.
	OutcomeStartFailed
	// OutcomeLost means a capacity poll failed and the server was dropped.
	OutcomeLost
	// OutcomeSkipped means the session was interrupted before bootstrap reached it.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeActive:
		return "active"
	case OutcomeUnreachable:
		return "unreachable"
	case OutcomeRejected:
		return "rejected"
	case OutcomeStartFailed:
		return "start failed"
	case OutcomeLost:
		return "lost"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ServerResult summarizes one server's session.
type ServerResult struct {
	Identity   server.Identity
	Outcome    Outcome
	Readings   int
	LastStatus int32
	LastSeen   time.Time
	Err        error
}

// Result summarizes a finished session.
type Result struct {
	// Servers is in ascending id order.
	Servers []ServerResult
	Passes  int
	// Canceled is set when the context ended the session.
	Canceled bool
}

// Loop runs one monitoring session. A Loop is not reusable.
type Loop struct {
	opts     Options
	log      logger.Logger
	reporter Reporter

	active  ActiveSet
	results map[int]*ServerResult
	ids     []server.Identity
	pass    int

	plotterUp bool
}

// New creates a loop.
func New(opts Options) *Loop {
	if opts.StartDelay < 0 {
		opts.StartDelay = 0
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Dial == nil {
		connOpts := opts.Connection
		opts.Dial = func(id server.Identity) Conn {
			return server.NewConnection(id, connOpts)
		}
	}
	if opts.After == nil {
		opts.After = time.After
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}

	ids := make([]server.Identity, len(opts.Servers))
	copy(ids, opts.Servers)
	sort.Slice(ids, func(i, j int) bool { return ids[i].ID < ids[j].ID })

	results := make(map[int]*ServerResult, len(ids))
	for _, id := range ids {
		results[id.ID] = &ServerResult{Identity: id, Outcome: OutcomeSkipped}
	}

	return &Loop{
		opts:     opts,
		log:      log,
		reporter: reporter,
		results:  results,
		ids:      ids,
	}
}

// Active returns the ids currently being polled.
func (l *Loop) Active() []int {
	return l.active.IDs()
}

// Run bootstraps every server, then polls the active set until it is empty
// or ctx is done. Every connection and the sink are closed before Run
// returns, on every path.
func (l *Loop) Run(ctx context.Context) *Result {
	defer l.cleanup()

	l.connectPlotter(ctx)

	if canceled := l.bootstrap(ctx); canceled {
		return l.finish(ctx, true)
	}

	l.active.seal()
	l.emit(Event{Kind: EventMonitoring})

	for l.active.Len() > 0 {
		l.pass++
		if canceled := l.runPass(ctx); canceled {
			return l.finish(ctx, true)
		}
		l.emit(Event{Kind: EventPassComplete})

		if l.active.Len() == 0 {
			break
		}
		if !l.sleep(ctx, l.opts.Interval) {
			return l.finish(ctx, true)
		}
	}

	return l.finish(ctx, false)
}

func (l *Loop) connectPlotter(ctx context.Context) {
	if l.opts.Sink == nil {
		return
	}
	if err := l.opts.Sink.Connect(ctx); err != nil {
		l.emit(Event{Kind: EventPlotterUnavailable, Err: err})
		return
	}
	l.plotterUp = l.opts.Sink.Available()
	if l.plotterUp {
		l.emit(Event{Kind: EventPlotterConnected})
	}
}

// bootstrap connects and starts every server in id order. It reports true
// when ctx ended it early.
func (l *Loop) bootstrap(ctx context.Context) bool {
	for i, id := range l.ids {
		if i > 0 && !l.sleep(ctx, l.opts.StartDelay) {
			return true
		}
		if ctx.Err() != nil {
			return true
		}
		l.bootstrapOne(ctx, id)
	}
	return ctx.Err() != nil
}

func (l *Loop) bootstrapOne(ctx context.Context, id server.Identity) {
	res := l.results[id.ID]
	conn := l.opts.Dial(id)

	l.emit(Event{Kind: EventConnecting, Server: id})
	if err := conn.Connect(ctx); err != nil {
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		res.Outcome, res.Err = OutcomeUnreachable, err
		l.emit(Event{Kind: EventConnectFailed, Server: id, Err: err})
		return
	}
	l.emit(Event{Kind: EventConnected, Server: id})

	ok, err := conn.SendStart(ctx, l.opts.FaultToleranceLevel)
	switch {
	case err != nil && ctx.Err() != nil:
		_ = conn.Close()
	case err != nil:
		res.Outcome, res.Err = OutcomeStartFailed, err
		_ = conn.Close()
		l.emit(Event{Kind: EventStartFailed, Server: id, Err: err})
	case !ok:
		res.Outcome = OutcomeRejected
		_ = conn.Close()
		l.emit(Event{Kind: EventStartRejected, Server: id})
	default:
		l.active.add(conn)
		res.Outcome = OutcomeActive
		l.emit(Event{Kind: EventStarted, Server: id})
	}
}

type pollResult struct {
	conn     Conn
	capacity *message.Capacity
	err      error
}

// runPass polls every member of a snapshot of the active set. It reports
// true when ctx ended the pass.
func (l *Loop) runPass(ctx context.Context) bool {
	snapshot := l.active.Snapshot()

	if !l.opts.Parallel {
		for _, c := range snapshot {
			if ctx.Err() != nil {
				return true
			}
			capacity, err := c.PollCapacity(ctx)
			if err == nil {
				l.forward(capacity)
			}
			if l.handle(ctx, pollResult{conn: c, capacity: capacity, err: err}) {
				return true
			}
		}
		return false
	}

	// One goroutine per member; each connection has at most one request in
	// flight. Membership changes happen here, after every poll returned.
	results := make([]pollResult, len(snapshot))
	var wg sync.WaitGroup
	for i, c := range snapshot {
		wg.Add(1)
		go func(i int, c Conn) {
			defer wg.Done()
			capacity, err := c.PollCapacity(ctx)
			if err == nil {
				l.forward(capacity)
			}
			results[i] = pollResult{conn: c, capacity: capacity, err: err}
		}(i, c)
	}
	wg.Wait()

	for _, r := range results {
		if l.handle(ctx, r) {
			return true
		}
	}
	return false
}

func (l *Loop) forward(c *message.Capacity) {
	if l.opts.Sink != nil {
		l.opts.Sink.Forward(c)
	}
}

// handle applies one poll outcome on the loop goroutine. It reports true
// when the failure was caused by ctx.
func (l *Loop) handle(ctx context.Context, r pollResult) bool {
	id := r.conn.Identity()
	res := l.results[id.ID]

	if r.err != nil {
		if ctx.Err() != nil {
			return true
		}
		l.active.Remove(id.ID)
		_ = r.conn.Close()
		res.Outcome, res.Err = OutcomeLost, r.err
		l.log.Debug("dropped server %d: %v", id.ID, r.err)
		l.emit(Event{Kind: EventPollFailed, Server: id, Err: r.err})
		l.checkPlotter()
		return false
	}

	res.Readings++
	res.LastStatus = r.capacity.ServerStatus
	res.LastSeen = l.opts.Now()
	if l.opts.History != nil {
		l.opts.History.Push(id.ID, r.capacity.ServerStatus)
	}
	l.emit(Event{Kind: EventCapacity, Server: id, Capacity: r.capacity})
	l.checkPlotter()
	return false
}

// checkPlotter reports the moment the sink becomes absent.
func (l *Loop) checkPlotter() {
	if !l.plotterUp || l.opts.Sink.Available() {
		return
	}
	l.plotterUp = false
	l.emit(Event{Kind: EventPlotterLost})
}

// sleep waits d or until ctx is done. It reports false on cancellation.
func (l *Loop) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-l.opts.After(d):
		return true
	}
}

func (l *Loop) emit(e Event) {
	e.Time = l.opts.Now()
	e.Active = l.active.Len()
	e.Pass = l.pass
	l.reporter.Report(e)
}

func (l *Loop) finish(ctx context.Context, canceled bool) *Result {
	out := &Result{Passes: l.pass, Canceled: canceled}
	for _, id := range l.ids {
		out.Servers = append(out.Servers, *l.results[id.ID])
	}

	var err error
	if canceled {
		err = ctx.Err()
	}
	l.emit(Event{Kind: EventFinished, Err: err})
	return out
}

// cleanup closes every remaining connection and the sink.
func (l *Loop) cleanup() {
	for _, c := range l.active.Snapshot() {
		if err := c.Close(); err != nil {
			l.log.Debug("close server %d: %v", c.ID(), err)
		}
	}
	if l.opts.Sink != nil {
		if err := l.opts.Sink.Close(); err != nil {
			l.log.Debug("close plotter: %v", err)
		}
	}
}
