package bootstrap

import "time"

// State represents the lifecycle state of a single initializer.
type State int

const (
	// StatePending is the initial state before any operation has run.
	StatePending State = iota

	// StateInitializing indicates Setup work is in progress.
	StateInitializing

	// StateInitialized indicates Setup completed successfully.
	StateInitialized

	// StateComplete indicates the initializer finished its whole lifecycle.
	StateComplete

	// StateFailed indicates an operation failed for this attempt.
	StateFailed

	// StateError indicates an unexpected error outside the normal
	// validate/probe/setup path.
	StateError

	// StateIncomplete indicates the lifecycle was interrupted before a
	// terminal state was reached.
	StateIncomplete

	// StateUnknown indicates the state cannot be determined, typically
	// after an external status push with no state set.
	StateUnknown
)

// String returns the lowercase string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateError:
		return "error"
	case StateIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// IsSuccess returns true for the success terminal states.
func (s State) IsSuccess() bool {
	return s == StateComplete || s == StateInitialized
}

// IsTerminal returns true once the state is final for the current attempt.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateFailed || s == StateError
}

// Status tracks a single initializer's lifecycle state, collected data,
// errors, warnings and timing. It is a pure state container: no operation
// returns an error. A Status is owned by exactly one initializer and is not
// safe for concurrent mutation.
type Status struct {
	state    State
	dataKeys []string
	data     map[string]any
	errs     []string
	warnings []string

	startedAt time.Time
	endedAt   time.Time
	duration  time.Duration
}

// NewStatus creates a Status in the pending state.
func NewStatus() *Status {
	return &Status{
		state: StatePending,
		data:  make(map[string]any),
	}
}

// State returns the current lifecycle state.
func (s *Status) State() State { return s.state }

// SetState transitions the status to the given state.
func (s *Status) SetState(state State) { s.state = state }

// AddData records a key/value pair, preserving first-insertion order of
// keys. An existing key keeps its position and gets the new value.
func (s *Status) AddData(key string, value any) {
	if _, exists := s.data[key]; !exists {
		s.dataKeys = append(s.dataKeys, key)
	}
	s.data[key] = value
}

// SetData is an alias of AddData kept for symmetry with the report surface:
// both overwrite the value for an existing key.
func (s *Status) SetData(key string, value any) { s.AddData(key, value) }

// Data returns the value recorded under key and whether it was present.
func (s *Status) Data(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// DataKeys returns the recorded keys in first-insertion order.
func (s *Status) DataKeys() []string {
	keys := make([]string, len(s.dataKeys))
	copy(keys, s.dataKeys)
	return keys
}

// AddError appends an error message and forces the state to failed unless
// the status already reached a success terminal state. This is the only
// mutator with a side effect beyond its own field.
func (s *Status) AddError(msg string) {
	s.errs = append(s.errs, msg)
	if !s.state.IsSuccess() {
		s.state = StateFailed
	}
}

// recordError appends an error message without the failure transition.
// Used for validation problems, which leave the lifecycle state untouched;
// the raised ValidationError is the caller-facing signal.
func (s *Status) recordError(msg string) {
	s.errs = append(s.errs, msg)
}

// AddWarning appends a warning message. Warnings never affect state.
func (s *Status) AddWarning(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Errors returns the accumulated error messages.
func (s *Status) Errors() []string {
	errs := make([]string, len(s.errs))
	copy(errs, s.errs)
	return errs
}

// Warnings returns the accumulated warning messages.
func (s *Status) Warnings() []string {
	warnings := make([]string, len(s.warnings))
	copy(warnings, s.warnings)
	return warnings
}

// HasErrors returns true if any error has been recorded.
func (s *Status) HasErrors() bool { return len(s.errs) > 0 }

// HasWarnings returns true if any warning has been recorded.
func (s *Status) HasWarnings() bool { return len(s.warnings) > 0 }

// StartTiming captures the wall-clock start of the lifecycle.
func (s *Status) StartTiming() {
	s.startedAt = time.Now()
}

// EndTiming captures the wall-clock end and computes the duration. Without
// a prior StartTiming the duration stays zero.
func (s *Status) EndTiming() {
	s.endedAt = time.Now()
	if !s.startedAt.IsZero() {
		s.duration = s.endedAt.Sub(s.startedAt)
	}
}

// MarkComplete transitions to the complete state, ending timing if it was
// started and not yet ended.
func (s *Status) MarkComplete() {
	if !s.startedAt.IsZero() && s.endedAt.IsZero() {
		s.EndTiming()
	}
	s.state = StateComplete
}

// StartedAt returns when timing started, zero if it never did.
func (s *Status) StartedAt() time.Time { return s.startedAt }

// EndedAt returns when timing ended, zero if it never did.
func (s *Status) EndedAt() time.Time { return s.endedAt }

// Duration returns the measured lifecycle duration.
func (s *Status) Duration() time.Duration { return s.duration }

// IsSuccess returns true when the state is a success terminal state.
func (s *Status) IsSuccess() bool { return s.state.IsSuccess() }

// IsComplete returns true once MarkComplete has run.
func (s *Status) IsComplete() bool { return s.state == StateComplete }

// IsFailed returns true when errors were recorded or the state is a
// failure state.
func (s *Status) IsFailed() bool {
	return len(s.errs) > 0 || s.state == StateFailed || s.state == StateError
}

// Reset returns the status to its initial pending state, wiping data,
// errors, warnings and timing. Resetting twice is the same as once.
func (s *Status) Reset() {
	s.state = StatePending
	s.dataKeys = nil
	s.data = make(map[string]any)
	s.errs = nil
	s.warnings = nil
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.duration = 0
}

// Snapshot serializes the status into the report surface consumed by a CLI
// or HTTP layer: status, data, errors, warnings, duration (seconds) and the
// hasErrors/hasWarnings flags. Data keys keep insertion order.
func (s *Status) Snapshot() map[string]any {
	data := make(map[string]any, len(s.data))
	for _, k := range s.dataKeys {
		data[k] = s.data[k]
	}
	return map[string]any{
		"status":      s.state.String(),
		"data":        data,
		"errors":      s.Errors(),
		"warnings":    s.Warnings(),
		"duration":    s.duration.Seconds(),
		"hasErrors":   s.HasErrors(),
		"hasWarnings": s.HasWarnings(),
	}
}
