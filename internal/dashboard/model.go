// Package dashboard is the full-screen view of a monitoring session. It
// consumes monitor events through a Bridge and renders one row per server
// with its state, last status and a sparkline of recent readings.
package dashboard

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/hasup/internal/monitor"
	"github.com/rileyhilliard/hasup/internal/server"
)

// ServerState is how the dashboard currently sees one server.
type ServerState int

const (
	StatePending ServerState = iota
	StateConnecting
	StateStarted
	StateMonitoring
	StateRejected
	StateUnreachable
	StateStartFailed
	StateLost
)

// String returns a human-readable state label.
func (s ServerState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConnecting:
		return "connecting"
	case StateStarted:
		return "started"
	case StateMonitoring:
		return "monitoring"
	case StateRejected:
		return "rejected"
	case StateUnreachable:
		return "unreachable"
	case StateStartFailed:
		return "start failed"
	case StateLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether the server has left the session for good.
func (s ServerState) Terminal() bool {
	switch s {
	case StateRejected, StateUnreachable, StateStartFailed, StateLost:
		return true
	}
	return false
}

// PlotterState tracks the plotter sink as seen from events.
type PlotterState int

const (
	PlotterUnknown PlotterState = iota
	PlotterDisabled
	PlotterConnected
	PlotterUnavailable
	PlotterLost
)

// serverRow is the per-server state rendered as one row.
type serverRow struct {
	identity server.Identity
	state    ServerState
	readings int
	last     int32
	lastSeen time.Time
	lastErr  string
}

// Model is the Bubble Tea model for the monitoring dashboard.
type Model struct {
	servers  []server.Identity
	rows     map[int]*serverRow
	history  *monitor.History
	selected int

	plotter     PlotterState
	plotterAddr string
	pass        int
	active      int
	lastUpdate  time.Time
	finished    bool
	interrupted bool
	result      *monitor.Result

	width    int
	height   int
	quitting bool
	viewMode ViewMode
	showHelp bool

	spinner spinner.Model

	detailViewport viewport.Model
	viewportReady  bool

	// stop asks the monitoring loop to end; called when the user quits.
	stop func()
	now  func() time.Time
}

// EventMsg carries one monitor event into the program.
type EventMsg monitor.Event

// FinishedMsg carries the session result once the loop returns.
type FinishedMsg struct {
	Result *monitor.Result
}

// Options configures a Model.
type Options struct {
	// PlotterAddress is shown in the header; empty means forwarding is off.
	PlotterAddress string
	// HistorySize bounds the sparkline. Defaults to monitor.DefaultHistorySize.
	HistorySize int
	// Stop is called once when the user quits.
	Stop func()
	Now  func() time.Time
}

// NewModel creates a dashboard for the given registry. Servers are shown in
// id order, all pending.
func NewModel(servers []server.Identity, opts Options) Model {
	ids := make([]server.Identity, len(servers))
	copy(ids, servers)
	sort.Slice(ids, func(i, j int) bool { return ids[i].ID < ids[j].ID })

	rows := make(map[int]*serverRow, len(ids))
	for _, id := range ids {
		rows[id.ID] = &serverRow{identity: id, state: StatePending}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: SpinnerFrames, FPS: 150 * time.Millisecond}

	plotter := PlotterUnknown
	if opts.PlotterAddress == "" {
		plotter = PlotterDisabled
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return Model{
		servers:     ids,
		rows:        rows,
		history:     monitor.NewHistory(opts.HistorySize),
		plotter:     plotter,
		plotterAddr: opts.PlotterAddress,
		spinner:     sp,
		stop:        opts.Stop,
		now:         now,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, viewportHeight)
			m.detailViewport.YPosition = headerHeight
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = viewportHeight
		}
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.apply(monitor.Event(msg))
		if m.viewMode == ViewDetail {
			m.updateDetailViewportContent()
		}

	case FinishedMsg:
		m.finished = true
		m.result = msg.Result
		if msg.Result != nil {
			m.interrupted = msg.Result.Canceled
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// apply folds one event into the rows.
func (m *Model) apply(e monitor.Event) {
	m.lastUpdate = e.Time
	if e.Pass > 0 {
		m.pass = e.Pass
	}
	m.active = e.Active

	switch e.Kind {
	case monitor.EventPlotterConnected:
		m.plotter = PlotterConnected
		return
	case monitor.EventPlotterUnavailable:
		m.plotter = PlotterUnavailable
		return
	case monitor.EventPlotterLost:
		m.plotter = PlotterLost
		return
	case monitor.EventFinished:
		m.finished = true
		m.interrupted = e.Err != nil
		return
	case monitor.EventMonitoring, monitor.EventPassComplete:
		return
	}

	row, ok := m.rows[e.Server.ID]
	if !ok {
		return
	}
	if e.Err != nil {
		row.lastErr = e.Err.Error()
	}

	switch e.Kind {
	case monitor.EventConnecting, monitor.EventConnected:
		row.state = StateConnecting
	case monitor.EventConnectFailed:
		row.state = StateUnreachable
	case monitor.EventStarted:
		row.state = StateStarted
	case monitor.EventStartRejected:
		row.state = StateRejected
	case monitor.EventStartFailed:
		row.state = StateStartFailed
	case monitor.EventCapacity:
		if e.Capacity == nil {
			return
		}
		row.state = StateMonitoring
		row.readings++
		row.last = e.Capacity.ServerStatus
		row.lastSeen = e.Time
		m.history.Push(e.Server.ID, e.Capacity.ServerStatus)
	case monitor.EventPollFailed:
		row.state = StateLost
	}
}

// SelectedServer returns the identity under the cursor.
func (m Model) SelectedServer() (server.Identity, bool) {
	if m.selected < 0 || m.selected >= len(m.servers) {
		return server.Identity{}, false
	}
	return m.servers[m.selected], true
}

// State returns the current state of server id.
func (m Model) State(id int) ServerState {
	if row, ok := m.rows[id]; ok {
		return row.state
	}
	return StatePending
}

// ActiveCount returns how many servers are started or being polled.
func (m Model) ActiveCount() int {
	n := 0
	for _, row := range m.rows {
		if row.state == StateStarted || row.state == StateMonitoring {
			n++
		}
	}
	return n
}

// Finished reports whether the loop has returned.
func (m Model) Finished() bool {
	return m.finished
}

// SecondsSinceUpdate returns the seconds since the last event.
func (m Model) SecondsSinceUpdate() int {
	if m.lastUpdate.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.lastUpdate).Seconds())
}
