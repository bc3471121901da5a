// Package ui renders hasup-admin's terminal output: status lines for the
// monitoring session, the session summary, the registry listing and the
// banner, styled with Lip Gloss.
//
// # Components Overview
//
//	StatusPrinter  - monitor.Reporter printing one line per session event
//	SessionSummary - end-of-session table with outcomes and trends
//	RegistryTable  - configured servers and plotter
//	Sparkline      - mini graphs of recent capacity readings
//	Header         - banner shown when a session starts
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)   - started servers, readings rising
//	ColorError     (red)     - unreachable and dropped servers
//	ColorWarning   (yellow)  - refusals, plotter problems
//	ColorInfo      (cyan)    - connect attempts, status values
//	ColorMuted     (gray)    - timestamps and error details
//	ColorAccent    (magenta) - the banner title
//
// Use DisableColors() to switch to monochrome output (for --no-color), or
// ConfigureColors to decide from the flag, NO_COLOR and the terminal.
package ui
