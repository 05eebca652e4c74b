// Package bootstrap provides CloudEvents integration for lifecycle
// observation. Events use the CloudEvents specification for standardized
// format and better interoperability with external systems.
package bootstrap

import (
	"context"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEvent is an alias for the CloudEvents Event type for convenience.
type CloudEvent = cloudevents.Event

// EventType constants for lifecycle events emitted by the framework.
// Following the CloudEvents specification, these use reverse domain
// notation.
const (
	EventTypeInitializationStarted   = "com.bootstrap.initialization.started"
	EventTypeInitializationCompleted = "com.bootstrap.initialization.completed"
	EventTypeInitializationFailed    = "com.bootstrap.initialization.failed"

	EventTypeComponentValidated   = "com.bootstrap.component.validated"
	EventTypeComponentConnected   = "com.bootstrap.component.connected"
	EventTypeComponentInitialized = "com.bootstrap.component.initialized"
	EventTypeComponentFailed      = "com.bootstrap.component.failed"
	EventTypeComponentUnhealthy   = "com.bootstrap.component.unhealthy"
)

// Observer receives lifecycle events. Observers should handle events
// quickly to avoid blocking the bring-up sequence.
type Observer interface {
	// OnEvent is called for every emitted event the observer subscribed to.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer, used for
	// registration tracking and debugging.
	ObserverID() string
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc struct {
	ID string
	Fn func(ctx context.Context, event cloudevents.Event) error
}

func (o ObserverFunc) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return o.Fn(ctx, event)
}

func (o ObserverFunc) ObserverID() string { return o.ID }

// NewLifecycleEvent creates a properly formatted CloudEvent for the given
// lifecycle event type.
func NewLifecycleEvent(eventType, source string, data any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID(newEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)
	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	return event
}

// newEventID generates a unique identifier using UUIDv7, which embeds a
// timestamp and therefore sorts in emission order.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

type observerEntry struct {
	observer   Observer
	eventTypes map[string]bool // empty means all events
}

// EventEmitter fans lifecycle events out to registered observers. A nil
// *EventEmitter is valid and emits nothing, so components can carry one
// unconditionally.
type EventEmitter struct {
	mu        sync.RWMutex
	source    string
	observers []observerEntry
	logger    Logger
}

// NewEventEmitter creates an emitter with the given CloudEvents source URI.
func NewEventEmitter(source string, logger Logger) *EventEmitter {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &EventEmitter{source: source, logger: logger}
}

// RegisterObserver adds an observer, optionally filtered to the given event
// types. With no types the observer receives every event.
func (e *EventEmitter) RegisterObserver(observer Observer, eventTypes ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry := observerEntry{observer: observer, eventTypes: make(map[string]bool, len(eventTypes))}
	for _, t := range eventTypes {
		entry.eventTypes[t] = true
	}
	e.observers = append(e.observers, entry)
}

// UnregisterObserver removes every registration of the observer, matched by
// ObserverID. Unregistering an unknown observer is a no-op.
func (e *EventEmitter) UnregisterObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.observers[:0]
	for _, entry := range e.observers {
		if entry.observer.ObserverID() != observer.ObserverID() {
			kept = append(kept, entry)
		}
	}
	e.observers = kept
}

// Emit builds a lifecycle CloudEvent and delivers it synchronously to every
// interested observer. Observer errors are logged, never propagated: event
// emission must not fail the bring-up.
func (e *EventEmitter) Emit(ctx context.Context, eventType string, data map[string]any) {
	if e == nil {
		return
	}
	e.mu.RLock()
	entries := make([]observerEntry, len(e.observers))
	copy(entries, e.observers)
	source := e.source
	e.mu.RUnlock()

	if len(entries) == 0 {
		return
	}
	event := NewLifecycleEvent(eventType, source, data)
	for _, entry := range entries {
		if len(entry.eventTypes) > 0 && !entry.eventTypes[eventType] {
			continue
		}
		if err := entry.observer.OnEvent(ctx, event); err != nil {
			e.logger.Error("Observer failed to handle event",
				"observer", entry.observer.ObserverID(), "type", eventType, "error", err)
		}
	}
}
