// Package monitor runs the admin client's monitoring session.
//
// A session has two phases:
//
//  1. Bootstrap. Every registered server is visited once in ascending id
//     order, StartDelay apart: connect, then send the STRT start command.
//     Servers that accept (answer YEP) join the active set. Servers that
//     refuse the connection, answer NOP, or fail the exchange are closed and
//     left out for the rest of the run.
//  2. Monitoring. While the active set is non-empty, each pass polls every
//     member of a snapshot of the set with the CPCTY demand. A reading is
//     forwarded to the plotter sink and reported. A failed poll removes the
//     server immediately; it is never contacted again. Passes are Interval
//     apart.
//
// The session ends when the active set empties or the context is canceled.
// Every connection and the sink are closed on every exit path.
//
// # Key Components
//
//	Loop      - the session state machine
//	ActiveSet - id-ordered members; only shrinks after bootstrap
//	History   - ring buffers of server_status for sparklines
//	Reporter  - receives an Event for every transition
//
// Polling is sequential by default. With Options.Parallel each pass polls
// every member concurrently, one goroutine per connection, and applies
// removals on the loop goroutine once all polls returned.
package monitor
