package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/hasup/internal/ui"
)

// SparklineWidth is the number of readings shown per row.
const SparklineWidth = 24

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	if m.showHelp {
		return m.renderHelpOverlay()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.viewMode == ViewDetail {
		if m.viewportReady {
			b.WriteString(m.detailViewport.View())
		} else {
			b.WriteString(m.renderDetail())
		}
	} else {
		b.WriteString(m.renderRows())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title and session counters.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("hasup monitor")

	status := m.spinner.View()
	switch {
	case m.finished && m.interrupted:
		status = "interrupted"
	case m.finished:
		status = "finished"
	}

	stats := LabelStyle.Render(fmt.Sprintf(" | %d servers | %d active | pass %d | plotter %s | %s",
		len(m.servers), m.ActiveCount(), m.pass, m.plotterLabel(), status))

	return HeaderStyle.Render(title + stats)
}

func (m Model) plotterLabel() string {
	switch m.plotter {
	case PlotterDisabled:
		return "off"
	case PlotterConnected:
		return "connected"
	case PlotterUnavailable:
		return "unavailable"
	case PlotterLost:
		return "lost"
	default:
		return "pending"
	}
}

// renderRows renders one line per server.
func (m Model) renderRows() string {
	if len(m.servers) == 0 {
		return LabelStyle.Render("No servers configured")
	}

	var lines []string
	lines = append(lines, LabelStyle.Render(fmt.Sprintf("  %-4s %-22s %-14s %8s %8s  %s",
		"ID", "ADDRESS", "STATE", "READINGS", "LAST", "TREND")))

	for i, id := range m.servers {
		row := m.rows[id.ID]

		glyph, style := StateStyle(row.state)
		if row.state == StateConnecting && !m.finished {
			glyph = m.spinner.View()
		}

		last := "-"
		if row.readings > 0 {
			last = fmt.Sprint(row.last)
		}

		cursor := "  "
		if i == m.selected {
			cursor = SelectedRowStyle.Render("▸ ")
		}

		line := fmt.Sprintf("%-4d %-22s ", id.ID, id.Address()) +
			style.Render(glyph+" "+padRight(row.state.String(), 12)) +
			fmt.Sprintf(" %8d %8s  ", row.readings, last) +
			ui.RenderSparkline(m.history.Last(id.ID, SparklineWidth), SparklineWidth)

		lines = append(lines, cursor+line)
	}

	return PanelStyle.Render(strings.Join(lines, "\n"))
}

// renderDetail renders the selected server's full history and last error.
func (m Model) renderDetail() string {
	id, ok := m.SelectedServer()
	if !ok {
		return LabelStyle.Render("No server selected")
	}
	row := m.rows[id.ID]
	glyph, style := StateStyle(row.state)

	var lines []string
	lines = append(lines, ValueStyle.Bold(true).Render(id.String()))
	lines = append(lines, LabelStyle.Render("state     ")+style.Render(glyph+" "+row.state.String()))
	lines = append(lines, LabelStyle.Render("readings  ")+ValueStyle.Render(fmt.Sprint(row.readings)))
	if row.readings > 0 {
		lines = append(lines, LabelStyle.Render("last      ")+ValueStyle.Render(fmt.Sprint(row.last)))
		lines = append(lines, LabelStyle.Render("seen at   ")+ValueStyle.Render(row.lastSeen.Format("15:04:05")))
	}
	if row.lastErr != "" {
		lines = append(lines, LabelStyle.Render("error     ")+ErrorTextStyle.Render(row.lastErr))
	}

	width := m.width - 6
	if width < SparklineWidth {
		width = SparklineWidth
	}
	if all := m.history.All(id.ID); len(all) > 0 {
		lines = append(lines, "")
		lines = append(lines, LabelStyle.Render("history"))
		lines = append(lines, ui.RenderSparkline(all, width))
	}

	return PanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) updateDetailViewportContent() {
	if !m.viewportReady {
		return
	}
	m.detailViewport.SetContent(m.renderDetail())
}

// renderFooter renders key hints and the last update time.
func (m Model) renderFooter() string {
	hints := "q quit | ↑/↓ select | enter detail | ? help"
	if m.viewMode == ViewDetail {
		hints = "esc back | q quit | ? help"
	}
	if !m.lastUpdate.IsZero() {
		hints += fmt.Sprintf(" | last event %ds ago", m.SecondsSinceUpdate())
	}
	return FooterStyle.Render(hints)
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
