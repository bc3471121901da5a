package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rileyhilliard/hasup/internal/monitor"
)

// SummaryTrendWidth is how many recent readings the summary sparkline shows.
const SummaryTrendWidth = 20

// RenderSessionSummary renders the end-of-session table: one row per
// configured server with its outcome, reading count, last status and, when
// history is given, a trend of recent readings.
func RenderSessionSummary(result *monitor.Result, history *monitor.History) string {
	if result == nil || len(result.Servers) == 0 {
		return ""
	}

	var b strings.Builder

	title := fmt.Sprintf("Session summary: %d %s", result.Passes, plural(result.Passes, "pass", "passes"))
	if result.Canceled {
		title += MutedStyle().Render(" (interrupted)")
	}
	b.WriteString(lipglossBold(title))
	b.WriteString("\n")

	columns := []TableColumn{
		{Title: "ID", Width: 4},
		{Title: "ADDRESS", Width: 22},
		{Title: "OUTCOME", Width: 15},
		{Title: "READINGS", Width: 9},
		{Title: "LAST", Width: 8},
	}
	if history != nil {
		columns = append(columns, TableColumn{Title: "TREND", Width: SummaryTrendWidth})
	}

	rows := make([][]string, 0, len(result.Servers))
	for _, s := range result.Servers {
		last := "-"
		if s.Readings > 0 {
			last = strconv.Itoa(int(s.LastStatus))
		}
		row := []string{
			strconv.Itoa(s.Identity.ID),
			s.Identity.Address(),
			OutcomeSymbol(s.Outcome) + " " + s.Outcome.String(),
			strconv.Itoa(s.Readings),
			last,
		}
		if history != nil {
			row = append(row, sparklineRunes(history.All(s.Identity.ID), SummaryTrendWidth))
		}
		rows = append(rows, row)
	}

	b.WriteString(RenderSimpleTable(columns, rows))
	b.WriteString("\n")

	for _, s := range result.Servers {
		if s.Err != nil {
			b.WriteString(fmt.Sprintf("  %s server %d: %v\n", ErrorStyle().Render(SymbolFail), s.Identity.ID, s.Err))
		}
	}

	return b.String()
}

// OutcomeSymbol returns the plain status glyph for an outcome.
func OutcomeSymbol(o monitor.Outcome) string {
	switch o {
	case monitor.OutcomeActive:
		return SymbolComplete
	case monitor.OutcomeRejected:
		return SymbolSkipped
	case monitor.OutcomeSkipped:
		return SymbolPending
	default:
		return SymbolFail
	}
}

func lipglossBold(s string) string {
	return InfoStyle().Bold(true).Render(s)
}
