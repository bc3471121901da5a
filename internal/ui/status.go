package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/rileyhilliard/hasup/internal/monitor"
)

// StatusPrinter writes one styled line per monitoring event. It implements
// monitor.Reporter.
type StatusPrinter struct {
	mu  sync.Mutex
	out io.Writer

	// Verbose adds connect attempts and pass boundaries.
	Verbose bool
	// PlotterAddress is shown in plotter lines when set.
	PlotterAddress string
	// TimeFormat formats reading timestamps. Defaults to 15:04:05.
	TimeFormat string
}

// NewStatusPrinter creates a printer writing to out.
func NewStatusPrinter(out io.Writer) *StatusPrinter {
	return &StatusPrinter{out: out, TimeFormat: "15:04:05"}
}

// Report renders e.
func (p *StatusPrinter) Report(e monitor.Event) {
	line, ok := p.format(e)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

func (p *StatusPrinter) format(e monitor.Event) (string, bool) {
	server := e.Server.String()
	muted := MutedStyle()

	switch e.Kind {
	case monitor.EventPlotterConnected:
		return SuccessStyle().Render(SymbolSuccess) + " plotter connected" + p.plotterSuffix(), true
	case monitor.EventPlotterUnavailable:
		return WarningStyle().Render(SymbolWarning) + " plotter unavailable" + p.plotterSuffix() +
			", continuing without it " + muted.Render(errText(e.Err)), true
	case monitor.EventPlotterLost:
		return WarningStyle().Render(SymbolWarning) + " plotter connection lost, no longer forwarding samples", true

	case monitor.EventConnecting:
		if !p.Verbose {
			return "", false
		}
		return InfoStyle().Render(SymbolProgress) + " connecting to " + server, true
	case monitor.EventConnected:
		if !p.Verbose {
			return "", false
		}
		return InfoStyle().Render(SymbolProgress) + " connected to " + server, true
	case monitor.EventConnectFailed:
		return ErrorStyle().Render(SymbolFail) + " " + server + " unreachable " + muted.Render(errText(e.Err)), true
	case monitor.EventStarted:
		return SuccessStyle().Render(SymbolSuccess) + " " + server + " started", true
	case monitor.EventStartRejected:
		return WarningStyle().Render(SymbolSkipped) + " " + server + " refused the start command", true
	case monitor.EventStartFailed:
		return ErrorStyle().Render(SymbolFail) + " " + server + " start failed " + muted.Render(errText(e.Err)), true

	case monitor.EventMonitoring:
		if e.Active == 0 {
			return ErrorStyle().Render(SymbolFail) + " no server started, nothing to monitor", true
		}
		return SuccessStyle().Render(SymbolComplete) + fmt.Sprintf(" monitoring %d %s", e.Active, plural(e.Active, "server", "servers")), true
	case monitor.EventCapacity:
		if e.Capacity == nil {
			return "", false
		}
		return fmt.Sprintf("  %s %s status %s %s",
			muted.Render(SymbolReading), server,
			InfoStyle().Render(fmt.Sprint(e.Capacity.ServerStatus)),
			muted.Render(e.Time.Format(p.timeFormat()))), true
	case monitor.EventPollFailed:
		return ErrorStyle().Render(SymbolFail) + " " + server + " dropped " + muted.Render(errText(e.Err)) +
			muted.Render(fmt.Sprintf(" (%d remaining)", e.Active)), true
	case monitor.EventPassComplete:
		if !p.Verbose {
			return "", false
		}
		return muted.Render(fmt.Sprintf("pass %d complete, %d active", e.Pass, e.Active)), true

	case monitor.EventFinished:
		if e.Err != nil {
			return MutedStyle().Render(SymbolPending) + " monitoring interrupted", true
		}
		return MutedStyle().Render(SymbolPending) + " monitoring finished, no active servers left", true
	}
	return "", false
}

func (p *StatusPrinter) plotterSuffix() string {
	if p.PlotterAddress == "" {
		return ""
	}
	return " at " + p.PlotterAddress
}

func (p *StatusPrinter) timeFormat() string {
	if p.TimeFormat == "" {
		return "15:04:05"
	}
	return p.TimeFormat
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return "(" + err.Error() + ")"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
