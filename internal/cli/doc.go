// Package cli implements the hasup-admin command-line interface.
//
// Each Cobra command parses its flags and delegates to a plain function
// (monitorCommand, queryCommand, startCommand, serversList, Init) that takes
// an options struct and an io.Writer, so tests drive them without a process.
//
// # Command Structure
//
//	hasup-admin monitor              - Start every server, then poll capacity
//	hasup-admin query <id>           - One ad-hoc capacity query
//	hasup-admin start <id>           - Send the start command to one server
//	hasup-admin servers [set]        - List or edit the registry
//	hasup-admin init                 - Write hasup.yaml and dist_subs.conf
//	hasup-admin version              - Build information
//
// # Exit Status
//
// Configuration and fault tolerance problems exit 1 before any connection is
// made. A monitoring session that ends, whether every server was dropped or
// the user interrupted it, exits 0. Usage errors exit 2.
//
// # Flag Handling
//
// Global flags (--config, --verbose, --no-color) live on the root command.
// SessionFlags carries the monitor overrides (--servers, --interval,
// --fault-tolerance and friends) and is merged into the loaded config
// before the session starts.
package cli
