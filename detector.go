package bootstrap

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

// ErrorClassifier maps a matched error to a symbolic error type string
// such as "TIMEOUT_ERROR".
type ErrorClassifier func(err error) string

// ErrorHandler is invoked whenever an incoming error is classified as the
// type it was registered for.
type ErrorHandler func(record ErrorRecord)

// ErrorRecord is one classified error appended to the detector's history.
type ErrorRecord struct {
	Component string    `json:"component"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TypedError is an optional interface errors can implement to self-report
// their symbolic type, bypassing pattern matching.
type TypedError interface {
	ErrorType() string
}

type errorPattern struct {
	re       *regexp.Regexp
	classify ErrorClassifier
}

// ErrorDetector classifies raw errors through registered patterns, invokes
// the matching handler, and keeps a global and per-component history. Like
// the PerformanceMonitor it is shared across initializers for one
// orchestration run and safe for concurrent use. History grows until the
// caller invokes Clear or Cleanup.
type ErrorDetector struct {
	mu          sync.Mutex
	patterns    []errorPattern
	handlers    map[string]ErrorHandler
	history     []ErrorRecord
	byComponent map[string][]ErrorRecord
}

// NewErrorDetector creates a detector with no patterns or handlers.
func NewErrorDetector() *ErrorDetector {
	return &ErrorDetector{
		handlers:    make(map[string]ErrorHandler),
		byComponent: make(map[string][]ErrorRecord),
	}
}

// RegisterPattern adds a text-matching rule tried against error messages in
// registration order. The classifier maps a matched error to its symbolic
// type.
func (d *ErrorDetector) RegisterPattern(pattern string, classify ErrorClassifier) error {
	if classify == nil {
		return ErrNilClassifier
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patterns = append(d.patterns, errorPattern{re: re, classify: classify})
	return nil
}

// RegisterHandler installs the handler invoked for errors classified as
// errType. A later registration for the same type replaces the earlier one.
func (d *ErrorDetector) RegisterHandler(errType string, handler ErrorHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[errType] = handler
}

// Detect classifies err for the component, appends the record to the global
// and per-component histories, and invokes the handler registered for the
// classified type, if any. Patterns are tried in registration order; when
// none match, an error self-reporting its type via TypedError is trusted,
// and the Go type name is the final fallback.
func (d *ErrorDetector) Detect(component string, err error) ErrorRecord {
	record := ErrorRecord{
		Component: component,
		Message:   err.Error(),
		Timestamp: time.Now(),
	}

	d.mu.Lock()
	for _, p := range d.patterns {
		if p.re.MatchString(record.Message) {
			record.Type = p.classify(err)
			break
		}
	}
	if record.Type == "" {
		if typed, ok := err.(TypedError); ok {
			record.Type = typed.ErrorType()
		} else {
			record.Type = fmt.Sprintf("%T", err)
		}
	}
	d.history = append(d.history, record)
	d.byComponent[component] = append(d.byComponent[component], record)
	handler := d.handlers[record.Type]
	d.mu.Unlock()

	// Handler runs outside the lock so it may query the detector.
	if handler != nil {
		handler(record)
	}
	return record
}

// LastError returns the most recent record, ok=false when history is empty.
func (d *ErrorDetector) LastError() (ErrorRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.history) == 0 {
		return ErrorRecord{}, false
	}
	return d.history[len(d.history)-1], true
}

// LastErrorFor returns the component's most recent record.
func (d *ErrorDetector) LastErrorFor(component string) (ErrorRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	records := d.byComponent[component]
	if len(records) == 0 {
		return ErrorRecord{}, false
	}
	return records[len(records)-1], true
}

// History returns a copy of the global history, oldest first.
func (d *ErrorDetector) History() []ErrorRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]ErrorRecord, len(d.history))
	copy(out, d.history)
	return out
}

// HistoryFor returns a copy of the component's history, oldest first.
func (d *ErrorDetector) HistoryFor(component string) []ErrorRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	records := d.byComponent[component]
	out := make([]ErrorRecord, len(records))
	copy(out, records)
	return out
}

// Count returns the number of records in the global history.
func (d *ErrorDetector) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}

// CountFor returns the number of records for the component.
func (d *ErrorDetector) CountFor(component string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byComponent[component])
}

// HasErrors reports whether any error has been detected.
func (d *ErrorDetector) HasErrors() bool { return d.Count() > 0 }

// HasErrorsFor reports whether any error has been detected for the
// component.
func (d *ErrorDetector) HasErrorsFor(component string) bool {
	return d.CountFor(component) > 0
}

// Clear wipes the global and per-component histories. Patterns and
// handlers stay registered.
func (d *ErrorDetector) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = nil
	d.byComponent = make(map[string][]ErrorRecord)
}

// Cleanup drops records older than maxAge from both histories and returns
// how many were removed from the global one. This is the only retention
// mechanism; the detector never evicts on its own.
func (d *ErrorDetector) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	kept := d.history[:0]
	for _, record := range d.history {
		if record.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	d.history = kept

	for component, records := range d.byComponent {
		keptRecords := records[:0]
		for _, record := range records {
			if record.Timestamp.Before(cutoff) {
				continue
			}
			keptRecords = append(keptRecords, record)
		}
		if len(keptRecords) == 0 {
			delete(d.byComponent, component)
			continue
		}
		d.byComponent[component] = keptRecords
	}
	return removed
}
