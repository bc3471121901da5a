package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/hasup/internal/config"
	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/rileyhilliard/hasup/internal/frame"
	"github.com/rileyhilliard/hasup/internal/server"
)

// Machine mode flag - when true, errors are written as JSON to stdout
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeFaultTolerance = "FAULT_TOLERANCE_INVALID"
	ErrCodeServerNotFound = "SERVER_NOT_FOUND"
	ErrCodeConnectRefused = "CONNECT_REFUSED"
	ErrCodeConnectFailed  = "CONNECT_FAILED"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeProtocol       = "PROTOCOL_ERROR"
	ErrCodeStartRejected  = "START_REJECTED"
	ErrCodeCommandFailed  = "COMMAND_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
// Domain errors deeper in the chain choose the code; the outermost structured
// error supplies the message and suggestion.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	out := &JSONError{Code: ErrCodeUnknown, Message: err.Error()}

	var hErr *errors.Error
	if stderrors.As(err, &hErr) {
		out.Message = hErr.Message
		out.Suggestion = hErr.Suggestion
		out.Code = mapErrorCode(hErr.Code, hErr.Message)
	}

	var cfgErr *config.ConfigError
	var connErr *server.ConnectError
	var rpcErr *server.RPCError
	var protoErr *frame.ProtocolError

	switch {
	case stderrors.As(err, &cfgErr):
		out.Code = ErrCodeFaultTolerance
		out.Details = map[string]interface{}{
			"path":   cfgErr.Path,
			"reason": cfgErr.Reason.String(),
		}
	case stderrors.As(err, &connErr):
		out.Code = ErrCodeConnectFailed
		if connErr.Refused() {
			out.Code = ErrCodeConnectRefused
		}
		out.Details = map[string]interface{}{
			"server":  connErr.Server.ID,
			"address": connErr.Server.Address(),
			"reason":  connErr.Reason.String(),
		}
	case stderrors.As(err, &rpcErr):
		out.Code = ErrCodeCommandFailed
		details := map[string]interface{}{
			"server":    rpcErr.Server,
			"operation": rpcErr.Op,
		}
		if rpcErr.Timeout {
			out.Code = ErrCodeTimeout
		} else if stderrors.As(err, &protoErr) {
			out.Code = ErrCodeProtocol
			details["reason"] = protoErr.Reason.String()
		}
		out.Details = details
	}

	return out
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	msgLower := strings.ToLower(message)

	switch internalCode {
	case errors.ErrConfig:
		switch {
		case strings.Contains(msgLower, "no server with id"):
			return ErrCodeServerNotFound
		case strings.Contains(msgLower, "not found"):
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrConnect:
		return ErrCodeConnectFailed
	case errors.ErrProtocol:
		return ErrCodeProtocol
	case errors.ErrRPC:
		if strings.Contains(msgLower, "refused the start command") {
			return ErrCodeStartRejected
		}
		return ErrCodeCommandFailed
	case errors.ErrExec:
		return ErrCodeCommandFailed
	}
	return ErrCodeUnknown
}
