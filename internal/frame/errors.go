package frame

import "fmt"

// ProtocolFailReason categorizes why a frame could not be read.
type ProtocolFailReason int

const (
	// IncompleteHeader means the stream closed before all 4 length bytes arrived.
	IncompleteHeader ProtocolFailReason = iota + 1
	// IncompleteBody means the stream closed before the announced payload arrived.
	IncompleteBody
	// Malformed means the frame or its payload could not be interpreted.
	Malformed
)

// String returns a human-readable description of the failure reason.
func (r ProtocolFailReason) String() string {
	switch r {
	case IncompleteHeader:
		return "incomplete header"
	case IncompleteBody:
		return "incomplete body"
	case Malformed:
		return "malformed frame"
	default:
		return "unknown protocol error"
	}
}

// ProtocolError reports a frame that violates the wire format.
type ProtocolError struct {
	Reason ProtocolFailReason
	// Got and Want are byte counts for incomplete reads.
	Got, Want int
	Cause     error
}

func (e *ProtocolError) Error() string {
	msg := e.Reason.String()
	if e.Reason == IncompleteHeader || e.Reason == IncompleteBody {
		msg = fmt.Sprintf("%s: got %d of %d bytes", msg, e.Got, e.Want)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// Is matches another ProtocolError with the same reason, so callers can
// write errors.Is(err, &frame.ProtocolError{Reason: frame.IncompleteBody}).
func (e *ProtocolError) Is(target error) bool {
	t, ok := target.(*ProtocolError)
	return ok && t.Reason == e.Reason
}

// NewMalformed wraps a payload decoding failure as a Malformed protocol error.
func NewMalformed(cause error) *ProtocolError {
	return &ProtocolError{Reason: Malformed, Cause: cause}
}
