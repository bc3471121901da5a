package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/hasup/internal/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// FaultToleranceKey is the setting read from the fault tolerance file.
const FaultToleranceKey = "fault_tolerance_level"

// LoadFaultTolerance reads fault_tolerance_level from a "key = value" file
// such as dist_subs.conf. The value must be a non-negative integer.
func LoadFaultTolerance(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, faultError(&ConfigError{Path: path, Reason: Unreadable, Cause: err},
			"Cannot read fault tolerance file "+path,
			"Create it with a line like 'fault_tolerance_level = 1', or pass --fault-tolerance")
	}

	level, err := ParseFaultTolerance(data)
	if err != nil {
		return 0, faultError(&ConfigError{Path: path, Reason: Malformed, Cause: err},
			"Invalid fault tolerance file "+path,
			"Set 'fault_tolerance_level' to a non-negative integer")
	}
	return level, nil
}

// ParseFaultTolerance extracts fault_tolerance_level from file contents.
func ParseFaultTolerance(data []byte) (int, error) {
	v := viper.New()
	v.SetConfigType("dotenv")
	if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}

	if !v.IsSet(FaultToleranceKey) {
		return 0, fmt.Errorf("%s is not set", FaultToleranceKey)
	}
	raw := strings.TrimSpace(v.GetString(FaultToleranceKey))
	return parseLevel(raw)
}

// parseLevel converts a decimal string. cast treats a leading zero as an
// octal prefix, so zeros are stripped first.
func parseLevel(raw string) (int, error) {
	digits := strings.TrimLeft(raw, "0")
	if digits == "" && raw != "" {
		digits = "0"
	}
	level, err := cast.ToIntE(digits)
	if err != nil || raw == "" {
		return 0, fmt.Errorf("%s = %q is not an integer", FaultToleranceKey, raw)
	}
	if level < 0 {
		return 0, fmt.Errorf("%s = %d is negative", FaultToleranceKey, level)
	}
	return level, nil
}

func faultError(cause *ConfigError, message, suggestion string) error {
	return errors.WrapWithCode(cause, errors.ErrConfig, message, suggestion)
}
