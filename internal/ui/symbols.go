package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Server started or answered
	SymbolFail     = "✗" // Connect, start or poll failed
	SymbolPending  = "○" // Not yet contacted
	SymbolProgress = "◐" // Connecting or starting
	SymbolComplete = "●" // Being monitored
	SymbolSkipped  = "⊘" // Refused the start command or skipped
	SymbolWarning  = "⚠" // Degraded, e.g. plotter unavailable
	SymbolReading  = "↳" // One capacity reading
)
