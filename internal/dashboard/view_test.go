package dashboard

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/hasup/internal/monitor"
	"github.com/rileyhilliard/hasup/internal/server"
	"github.com/rileyhilliard/hasup/internal/ui"
)

func TestMain(m *testing.M) {
	ui.DisableColors()
	os.Exit(m.Run())
}

func TestViewListsServers(t *testing.T) {
	m := NewModel(registry(), Options{PlotterAddress: "localhost:7000"})
	m = send(t, m,
		event(monitor.EventStarted, 1),
		capacity(1, 42, time.Now()),
		EventMsg(monitor.Event{Kind: monitor.EventConnectFailed, Server: server.Identity{ID: 2}, Err: errors.New("refused")}),
		EventMsg(monitor.Event{Kind: monitor.EventPlotterConnected}),
	)

	out := m.View()

	assert.Contains(t, out, "hasup monitor")
	assert.Contains(t, out, "3 servers")
	assert.Contains(t, out, "1 active")
	assert.Contains(t, out, "plotter connected")
	assert.Contains(t, out, "localhost:7001")
	assert.Contains(t, out, "monitoring")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "unreachable")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "q quit")
}

func TestViewSelectionCursor(t *testing.T) {
	m := NewModel(registry(), Options{})
	m = send(t, m, key("j"))

	var cursorLine string
	for _, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, "▸") {
			cursorLine = line
		}
	}
	assert.Contains(t, cursorLine, "localhost:7002")
}

func TestViewDetail(t *testing.T) {
	m := NewModel(registry(), Options{})
	m = send(t, m,
		event(monitor.EventStarted, 1),
		capacity(1, 5, time.Now()),
		capacity(1, 9, time.Now()),
		key("enter"),
	)

	out := m.View()
	assert.Contains(t, out, "server 1 (localhost:7001)")
	assert.Contains(t, out, "readings")
	assert.Contains(t, out, "history")
	assert.Contains(t, out, "esc back")
}

func TestViewDetailShowsError(t *testing.T) {
	m := NewModel(registry(), Options{})
	m = send(t, m, EventMsg(monitor.Event{Kind: monitor.EventPollFailed, Server: server.Identity{ID: 1}, Err: errors.New("connection closed")}))
	m = send(t, m, key("enter"))

	assert.Contains(t, m.renderDetail(), "connection closed")
}

func TestViewFinished(t *testing.T) {
	m := NewModel(registry(), Options{})
	m = send(t, m, FinishedMsg{Result: &monitor.Result{}})
	assert.Contains(t, m.View(), "finished")

	m = send(t, NewModel(registry(), Options{}), FinishedMsg{Result: &monitor.Result{Canceled: true}})
	assert.Contains(t, m.View(), "interrupted")
}

func TestViewHelpOverlay(t *testing.T) {
	m := NewModel(registry(), Options{})
	m = send(t, m, key("?"))

	out := m.View()
	assert.Contains(t, out, "Keyboard Shortcuts")
	assert.Contains(t, out, "Stop monitoring and quit")
}

func TestViewEmptyAfterQuit(t *testing.T) {
	m := NewModel(registry(), Options{})
	m.HandleKeyMsg(key("q"))
	assert.Empty(t, m.View())
}

func TestViewNoServers(t *testing.T) {
	m := NewModel(nil, Options{})
	assert.Contains(t, m.View(), "No servers configured")
}

func TestStateStyleGlyphs(t *testing.T) {
	glyph, _ := StateStyle(StateMonitoring)
	assert.Equal(t, GlyphMonitoring, glyph)
	glyph, _ = StateStyle(StateUnreachable)
	assert.Equal(t, GlyphFailed, glyph)
	glyph, _ = StateStyle(StateLost)
	assert.Equal(t, GlyphLost, glyph)
}
