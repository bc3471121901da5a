package config

import "fmt"

// ConfigFailReason categorizes a fault tolerance file failure.
type ConfigFailReason int

const (
	// Unreadable means the file could not be opened or read.
	Unreadable ConfigFailReason = iota + 1
	// Malformed means the setting is missing, not an integer, or negative.
	Malformed
)

// String returns a human-readable description of the failure reason.
func (r ConfigFailReason) String() string {
	switch r {
	case Unreadable:
		return "unreadable"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ConfigError reports a fault tolerance file that cannot be used.
type ConfigError struct {
	Path   string
	Reason ConfigFailReason
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Path, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is matches any ConfigError with the same reason, so callers can write
// errors.Is(err, &ConfigError{Reason: Malformed}).
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	return ok && t.Reason == e.Reason
}
