package bootstrap

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type typedTestError struct{ kind string }

func (e *typedTestError) Error() string     { return "typed: " + e.kind }
func (e *typedTestError) ErrorType() string { return e.kind }

func TestDetectClassifiesByPattern(t *testing.T) {
	d := NewErrorDetector()
	require.NoError(t, d.RegisterPattern(`(?i)timeout`, func(error) string { return "TIMEOUT_ERROR" }))
	require.NoError(t, d.RegisterPattern(`(?i)connection refused`, func(error) string { return "CONNECTION_ERROR" }))

	record := d.Detect("database", errors.New("dial tcp: i/o timeout"))
	assert.Equal(t, "TIMEOUT_ERROR", record.Type)
	assert.Equal(t, "database", record.Component)

	record = d.Detect("cache", errProbeRefused)
	assert.Equal(t, "CONNECTION_ERROR", record.Type)
}

func TestDetectPatternOrderWins(t *testing.T) {
	d := NewErrorDetector()
	require.NoError(t, d.RegisterPattern(`timeout`, func(error) string { return "FIRST" }))
	require.NoError(t, d.RegisterPattern(`tcp.*timeout`, func(error) string { return "SECOND" }))

	record := d.Detect("network", errors.New("tcp probe timeout"))
	assert.Equal(t, "FIRST", record.Type)
}

func TestDetectFallsBackToTypedError(t *testing.T) {
	d := NewErrorDetector()
	record := d.Detect("queue", &typedTestError{kind: "BROKER_ERROR"})
	assert.Equal(t, "BROKER_ERROR", record.Type)
}

func TestDetectFallsBackToGoTypeName(t *testing.T) {
	d := NewErrorDetector()
	err := errors.New("who knows")
	record := d.Detect("queue", err)
	assert.Equal(t, fmt.Sprintf("%T", err), record.Type)
}

func TestRegisterPatternValidation(t *testing.T) {
	d := NewErrorDetector()
	assert.ErrorIs(t, d.RegisterPattern(`ok`, nil), ErrNilClassifier)
	assert.ErrorIs(t, d.RegisterPattern(`(`, func(error) string { return "X" }), ErrInvalidPattern)
}

func TestHandlerInvokedOnMatch(t *testing.T) {
	d := NewErrorDetector()
	require.NoError(t, d.RegisterPattern(`refused`, func(error) string { return "CONNECTION_ERROR" }))

	var handled []ErrorRecord
	d.RegisterHandler("CONNECTION_ERROR", func(record ErrorRecord) {
		handled = append(handled, record)
		// Handlers may query the detector without deadlocking.
		_ = d.Count()
	})
	d.RegisterHandler("TIMEOUT_ERROR", func(ErrorRecord) {
		t.Fatal("handler for unmatched type must not run")
	})

	d.Detect("cache", errProbeRefused)

	require.Len(t, handled, 1)
	assert.Equal(t, "CONNECTION_ERROR", handled[0].Type)
	assert.Equal(t, "cache", handled[0].Component)
}

func TestHistoryBookkeeping(t *testing.T) {
	d := NewErrorDetector()
	d.Detect("database", errors.New("first"))
	d.Detect("cache", errors.New("second"))
	d.Detect("database", errors.New("third"))

	assert.Equal(t, 3, d.Count())
	assert.Equal(t, 2, d.CountFor("database"))
	assert.Equal(t, 1, d.CountFor("cache"))
	assert.True(t, d.HasErrors())
	assert.True(t, d.HasErrorsFor("cache"))
	assert.False(t, d.HasErrorsFor("queue"))

	last, ok := d.LastError()
	require.True(t, ok)
	assert.Equal(t, "third", last.Message)

	last, ok = d.LastErrorFor("cache")
	require.True(t, ok)
	assert.Equal(t, "second", last.Message)

	_, ok = d.LastErrorFor("queue")
	assert.False(t, ok)

	history := d.HistoryFor("database")
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Message)
	assert.Equal(t, "third", history[1].Message)
}

func TestClearKeepsPatternsAndHandlers(t *testing.T) {
	d := NewErrorDetector()
	require.NoError(t, d.RegisterPattern(`refused`, func(error) string { return "CONNECTION_ERROR" }))
	d.Detect("cache", errProbeRefused)

	d.Clear()

	assert.Zero(t, d.Count())
	record := d.Detect("cache", errProbeRefused)
	assert.Equal(t, "CONNECTION_ERROR", record.Type)
}

func TestCleanupDropsOldRecords(t *testing.T) {
	d := NewErrorDetector()
	d.Detect("database", errors.New("old"))
	d.Detect("cache", errors.New("old too"))

	// Backdate everything past the retention window.
	d.mu.Lock()
	for i := range d.history {
		d.history[i].Timestamp = time.Now().Add(-2 * time.Hour)
	}
	for _, records := range d.byComponent {
		for i := range records {
			records[i].Timestamp = time.Now().Add(-2 * time.Hour)
		}
	}
	d.mu.Unlock()

	d.Detect("database", errors.New("fresh"))

	removed := d.Cleanup(time.Hour)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, d.Count())
	assert.Equal(t, 1, d.CountFor("database"))
	assert.False(t, d.HasErrorsFor("cache"))
}
