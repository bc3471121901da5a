package server

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ConnectFailReason categorizes why a connection attempt failed.
type ConnectFailReason int

const (
	// ConnectFailOther covers every transport failure except refusal.
	ConnectFailOther ConnectFailReason = iota
	// ConnectFailRefused means nothing was listening on the server's port.
	ConnectFailRefused
)

// String returns a human-readable description of the failure reason.
func (r ConnectFailReason) String() string {
	switch r {
	case ConnectFailRefused:
		return "connection refused"
	default:
		return "connection failed"
	}
}

// ConnectError reports a failed Connect.
type ConnectError struct {
	Server Identity
	Reason ConnectFailReason
	Cause  error
}

func (e *ConnectError) Error() string {
	if e.Reason == ConnectFailRefused {
		return fmt.Sprintf("connect %s: %s", e.Server, e.Reason)
	}
	return fmt.Sprintf("connect %s: %v", e.Server, e.Cause)
}

func (e *ConnectError) Unwrap() error {
	return e.Cause
}

// Refused reports whether the server refused the connection.
func (e *ConnectError) Refused() bool {
	return e.Reason == ConnectFailRefused
}

// categorizeDialError maps a dial failure to a ConnectError.
func categorizeDialError(id Identity, err error) *ConnectError {
	connErr := &ConnectError{Server: id, Reason: ConnectFailOther, Cause: err}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		strings.Contains(strings.ToLower(err.Error()), "connection refused") {
		connErr.Reason = ConnectFailRefused
	}
	return connErr
}

// RPCError reports a failed request/response exchange. The connection that
// returned it is Failed.
type RPCError struct {
	Server int
	Op     string
	// Timeout is set when a per-frame deadline expired.
	Timeout bool
	Cause   error
}

func (e *RPCError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("server %d %s: timed out: %v", e.Server, e.Op, e.Cause)
	}
	return fmt.Sprintf("server %d %s: %v", e.Server, e.Op, e.Cause)
}

func (e *RPCError) Unwrap() error {
	return e.Cause
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// StateError reports an operation attempted in a state that does not allow it.
// The connection's state is unchanged.
type StateError struct {
	Server int
	Op     string
	State  State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("server %d %s: not allowed while %s", e.Server, e.Op, e.State)
}
