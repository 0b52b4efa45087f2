package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned for invalid setup, before any solve is attempted
	ErrConfiguration = errors.New("configuration error")

	// ErrInfeasibleModel means a solve stage had no feasible solution.
	// The understaff slack is unbounded so this points at a model builder defect.
	ErrInfeasibleModel = errors.New("internal error: infeasible model")

	// ErrConsistencyViolation means a produced assignment breaks a hard hourly cap
	ErrConsistencyViolation = errors.New("consistency violation")
)

// ConfigurationError describes which part of the configuration is invalid
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// NewConfigurationError builds a ConfigurationError with a formatted reason
func NewConfigurationError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// HourViolation is a single hour where the workers exceed the hard cap
type HourViolation struct {
	Hour       int
	Workers    int
	MaxAllowed int
}

// ConsistencyError lists every hour that breaks its hard cap
type ConsistencyError struct {
	Violations []HourViolation
}

func (e *ConsistencyError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("hour %d has %d workers (max %d)", v.Hour, v.Workers, v.MaxAllowed)
	}
	return fmt.Sprintf("consistency violation: %s", strings.Join(parts, "; "))
}

func (e *ConsistencyError) Unwrap() error {
	return ErrConsistencyViolation
}
