package monitor

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/hasup/internal/message"
	"github.com/rileyhilliard/hasup/internal/server"
)

// EventKind identifies a session transition.
type EventKind int

const (
	EventPlotterConnected EventKind = iota + 1
	EventPlotterUnavailable
	EventPlotterLost
	EventConnecting
	EventConnected
	EventConnectFailed
	EventStarted
	EventStartRejected
	EventStartFailed
	EventMonitoring
	EventCapacity
	EventPollFailed
	EventPassComplete
	EventFinished
)

var eventNames = map[EventKind]string{
	EventPlotterConnected:   "plotter-connected",
	EventPlotterUnavailable: "plotter-unavailable",
	EventPlotterLost:        "plotter-lost",
	EventConnecting:         "connecting",
	EventConnected:          "connected",
	EventConnectFailed:      "connect-failed",
	EventStarted:            "started",
	EventStartRejected:      "start-rejected",
	EventStartFailed:        "start-failed",
	EventMonitoring:         "monitoring",
	EventCapacity:           "capacity",
	EventPollFailed:         "poll-failed",
	EventPassComplete:       "pass-complete",
	EventFinished:           "finished",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event describes one transition of the monitoring session. Fields that do
// not apply to the kind are zero.
type Event struct {
	Kind     EventKind
	Time     time.Time
	Server   server.Identity
	Capacity *message.Capacity
	Err      error
	// Active is the active set size after the transition.
	Active int
	// Pass is the 1-based monitoring pass number, zero during bootstrap.
	Pass int
}

// Reporter receives session events. The loop calls Report from a single
// goroutine, in order.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

// Report calls f(e).
func (f ReporterFunc) Report(e Event) { f(e) }

type nopReporter struct{}

func (nopReporter) Report(Event) {}

// Multi fans events out to every reporter in order.
func Multi(reporters ...Reporter) Reporter {
	return multiReporter(reporters)
}

type multiReporter []Reporter

func (m multiReporter) Report(e Event) {
	for _, r := range m {
		if r != nil {
			r.Report(e)
		}
	}
}

// Recorder is a Reporter that keeps every event, for tests and summaries.
type Recorder struct {
	Events []Event
}

// Report appends e.
func (r *Recorder) Report(e Event) {
	r.Events = append(r.Events, e)
}

// Kinds returns the kinds of the recorded events, optionally limited to one server.
func (r *Recorder) Kinds(serverID int) []EventKind {
	var kinds []EventKind
	for _, e := range r.Events {
		if serverID == 0 || e.Server.ID == serverID {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
