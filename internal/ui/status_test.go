package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/hasup/internal/message"
	"github.com/rileyhilliard/hasup/internal/monitor"
	"github.com/rileyhilliard/hasup/internal/server"
	"github.com/stretchr/testify/assert"
)

var srv1 = server.Identity{ID: 1, Host: "localhost", Port: 7001}

func printed(p *StatusPrinter, buf *bytes.Buffer, e monitor.Event) string {
	buf.Reset()
	p.Report(e)
	return strings.TrimSuffix(buf.String(), "\n")
}

func TestStatusPrinterLines(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC)
	boom := errors.New("connection refused")

	tests := []struct {
		name  string
		event monitor.Event
		want  string
	}{
		{"started", monitor.Event{Kind: monitor.EventStarted, Server: srv1}, SymbolSuccess + " server 1 (localhost:7001) started"},
		{"rejected", monitor.Event{Kind: monitor.EventStartRejected, Server: srv1}, SymbolSkipped + " server 1 (localhost:7001) refused the start command"},
		{"unreachable", monitor.Event{Kind: monitor.EventConnectFailed, Server: srv1, Err: boom}, SymbolFail + " server 1 (localhost:7001) unreachable (connection refused)"},
		{"start failed", monitor.Event{Kind: monitor.EventStartFailed, Server: srv1, Err: boom}, SymbolFail + " server 1 (localhost:7001) start failed (connection refused)"},
		{
			"capacity",
			monitor.Event{Kind: monitor.EventCapacity, Server: srv1, Time: at, Capacity: &message.Capacity{ServerID: 1, ServerStatus: 42}},
			"  " + SymbolReading + " server 1 (localhost:7001) status 42 12:30:45",
		},
		{"dropped", monitor.Event{Kind: monitor.EventPollFailed, Server: srv1, Err: boom, Active: 2}, SymbolFail + " server 1 (localhost:7001) dropped (connection refused) (2 remaining)"},
		{"monitoring one", monitor.Event{Kind: monitor.EventMonitoring, Active: 1}, SymbolComplete + " monitoring 1 server"},
		{"monitoring many", monitor.Event{Kind: monitor.EventMonitoring, Active: 3}, SymbolComplete + " monitoring 3 servers"},
		{"nothing started", monitor.Event{Kind: monitor.EventMonitoring}, SymbolFail + " no server started, nothing to monitor"},
		{"plotter lost", monitor.Event{Kind: monitor.EventPlotterLost}, SymbolWarning + " plotter connection lost, no longer forwarding samples"},
		{"finished", monitor.Event{Kind: monitor.EventFinished}, SymbolPending + " monitoring finished, no active servers left"},
		{"interrupted", monitor.Event{Kind: monitor.EventFinished, Err: errors.New("context canceled")}, SymbolPending + " monitoring interrupted"},
	}

	var buf bytes.Buffer
	p := NewStatusPrinter(&buf)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, printed(p, &buf, tt.event))
		})
	}
}

func TestStatusPrinterPlotterAddress(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf)
	p.PlotterAddress = "localhost:7000"

	assert.Equal(t, SymbolSuccess+" plotter connected at localhost:7000",
		printed(p, &buf, monitor.Event{Kind: monitor.EventPlotterConnected}))
	assert.Contains(t, printed(p, &buf, monitor.Event{Kind: monitor.EventPlotterUnavailable, Err: errors.New("refused")}),
		"plotter unavailable at localhost:7000, continuing without it (refused)")
}

func TestStatusPrinterVerboseOnlyEvents(t *testing.T) {
	quiet := []monitor.Event{
		{Kind: monitor.EventConnecting, Server: srv1},
		{Kind: monitor.EventConnected, Server: srv1},
		{Kind: monitor.EventPassComplete, Pass: 3, Active: 2},
	}

	var buf bytes.Buffer
	p := NewStatusPrinter(&buf)
	for _, e := range quiet {
		p.Report(e)
	}
	assert.Empty(t, buf.String())

	p.Verbose = true
	assert.Equal(t, SymbolProgress+" connecting to server 1 (localhost:7001)", printed(p, &buf, quiet[0]))
	assert.Equal(t, SymbolProgress+" connected to server 1 (localhost:7001)", printed(p, &buf, quiet[1]))
	assert.Equal(t, "pass 3 complete, 2 active", printed(p, &buf, quiet[2]))
}

func TestStatusPrinterIgnoresUnknownEvents(t *testing.T) {
	var buf bytes.Buffer
	p := NewStatusPrinter(&buf)

	p.Report(monitor.Event{Kind: monitor.EventKind(99)})
	p.Report(monitor.Event{Kind: monitor.EventCapacity, Server: srv1})

	assert.Empty(t, buf.String())
}

func TestStatusPrinterIsReporter(t *testing.T) {
	var _ monitor.Reporter = NewStatusPrinter(&bytes.Buffer{})
}
