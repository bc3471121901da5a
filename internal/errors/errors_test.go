package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrConnect,
		ErrProtocol,
		ErrRPC,
		ErrPlotter,
		ErrExec,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Fault tolerance level could not be read",
			suggestion: "Check dist_subs.conf",
		},
		{
			name:       "connect error",
			code:       ErrConnect,
			message:    "Server 2 refused the connection",
			suggestion: "Make sure the server is running",
		},
		{
			name:       "rpc error",
			code:       ErrRPC,
			message:    "Capacity query failed",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "message and suggestion",
			err:           New(ErrConfig, "Invalid configuration", "Check hasup.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check hasup.yaml syntax"},
		},
		{
			name:          "with cause",
			err:           WrapWithCode(errors.New("connection reset by peer"), ErrRPC, "Poll failed", ""),
			expectedParts: []string{"Poll failed", "connection reset by peer"},
		},
		{
			name:          "no suggestion",
			err:           New(ErrExec, "Command failed", ""),
			expectedParts: []string{"Command failed"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp 127.0.0.1:7002: connect: connection refused"),
		ErrConnect,
		"Cannot connect to server 2",
		"Start the server and try again",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "✗ "))
	assert.Contains(t, lines[0], "Cannot connect to server 2")
}

func TestWrap(t *testing.T) {
	cause := errors.New("broken pipe")
	wrapped := Wrap(cause, "Start command failed")

	assert.Equal(t, ErrRPC, wrapped.Code, "Wrap should default to ErrRPC code")
	assert.Equal(t, cause, wrapped.Cause)
}

func TestErrorsIsAndAs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := fmt.Errorf("outer: %w", WrapWithCode(cause, ErrPlotter, "Plotter error", ""))

	assert.True(t, errors.Is(wrapped, cause))

	var hErr *Error
	require.True(t, errors.As(wrapped, &hErr))
	assert.Equal(t, ErrPlotter, hErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrConnect))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrRPC, CodeOf(fmt.Errorf("x: %w", New(ErrRPC, "m", ""))))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{name: "exit error", err: NewExitError(42), wantCode: 42, wantOk: true},
		{name: "wrapped exit error", err: fmt.Errorf("run: %w", NewExitError(3)), wantCode: 3, wantOk: true},
		{name: "standard error", err: errors.New("standard"), wantCode: 0, wantOk: false},
		{name: "nil", err: nil, wantCode: 0, wantOk: false},
		{name: "structured error", err: New(ErrExec, "test", ""), wantCode: 0, wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "exit code 1", NewExitError(1).Error())
}
