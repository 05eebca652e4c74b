package bootstrap

import (
	"errors"
	"fmt"
	"strings"
)

// Framework errors
var (
	// Registration and lookup errors
	ErrAlreadyRegistered   = errors.New("initializer already registered")
	ErrInitializerNotFound = errors.New("initializer not found")
	ErrComponentNotFound   = errors.New("component not found")
	ErrMeasurementNotFound = errors.New("measurement not found")
	ErrTimerNotFound       = errors.New("timer not started")

	// Dependency graph errors
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrDependencyMissing  = errors.New("initializer depends on unregistered initializer")

	// Initialization lifecycle errors
	ErrConfigNotSet         = errors.New("configuration not validated")
	ErrValidationFailed     = errors.New("configuration validation failed")
	ErrConnectionFailed     = errors.New("connection test failed")
	ErrInitializationFailed = errors.New("initialization failed")

	// Error detector errors
	ErrInvalidPattern = errors.New("invalid error pattern")
	ErrNilClassifier  = errors.New("classifier must not be nil")
)

// CircularDependencyError reports a dependency edge that would close a cycle.
// The offending edge is never committed; Cycle holds the ordered chain of
// names starting and ending at the same initializer, e.g.
// [cache filesystem cache].
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Cycle, " -> "))
}

// Is makes the error match ErrCircularDependency with errors.Is.
func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// ValidationError reports configuration problems found by
// ValidateConfiguration. Problems holds one human-readable message per
// missing or invalid field.
type ValidationError struct {
	Component string
	Problems  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for %s: %s",
		e.Component, strings.Join(e.Problems, "; "))
}

// Is makes the error match ErrValidationFailed with errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ConnectionError reports a failed connection test after all configured
// retry attempts were exhausted. Attempts counts probes actually made.
type ConnectionError struct {
	Component string
	Attempts  int
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection test failed for %s after %d attempt(s): %v",
		e.Component, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is makes the error match ErrConnectionFailed with errors.Is.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

// InitializationError wraps a failure thrown from a driver's Setup hook.
// It is terminal for the attempt; the framework never retries Setup.
type InitializationError struct {
	Component string
	Err       error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed for %s: %v", e.Component, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// Is makes the error match ErrInitializationFailed with errors.Is.
func (e *InitializationError) Is(target error) bool {
	return target == ErrInitializationFailed
}
