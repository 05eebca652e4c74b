package bootstrap

import (
	"context"
	"fmt"
	"time"
)

// Initializer wraps a Driver with the lifecycle template shared by every
// subsystem: each public operation measures itself, delegates to the
// driver hook, updates the owned Status and records failures with the
// ErrorDetector before propagating them.
//
// The three operations are meant to run in order: ValidateConfiguration,
// TestConnection, PerformInitialization. The latter two refuse to run
// before a successful validation.
type Initializer struct {
	driver   Driver
	status   *Status
	config   Config
	monitor  *PerformanceMonitor
	detector *ErrorDetector
	emitter  *EventEmitter
	logger   Logger

	// sleep is swapped out in tests so retry delays don't slow the suite.
	sleep func(time.Duration)
}

// InitializerOption configures an Initializer.
type InitializerOption func(*Initializer)

// WithMonitor attaches the shared performance monitor.
func WithMonitor(monitor *PerformanceMonitor) InitializerOption {
	return func(i *Initializer) { i.monitor = monitor }
}

// WithErrorDetector attaches the shared error detector.
func WithErrorDetector(detector *ErrorDetector) InitializerOption {
	return func(i *Initializer) { i.detector = detector }
}

// WithEmitter attaches the lifecycle event emitter.
func WithEmitter(emitter *EventEmitter) InitializerOption {
	return func(i *Initializer) { i.emitter = emitter }
}

// WithLogger attaches a logger. Without one the initializer stays silent.
func WithLogger(logger Logger) InitializerOption {
	return func(i *Initializer) { i.logger = logger }
}

// NewInitializer wraps the driver in the lifecycle template. The monitor
// and detector are optional explicit dependencies rather than ambient
// globals; when absent the corresponding instrumentation is skipped.
func NewInitializer(driver Driver, opts ...InitializerOption) *Initializer {
	i := &Initializer{
		driver: driver,
		status: NewStatus(),
		logger: NoopLogger{},
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Name returns the wrapped driver's subsystem name.
func (i *Initializer) Name() string { return i.driver.Name() }

// Status returns the initializer's owned status object.
func (i *Initializer) Status() *Status { return i.status }

// Config returns the configuration stored by a successful
// ValidateConfiguration, nil before that.
func (i *Initializer) Config() Config { return i.config }

// ValidateConfiguration validates cfg through the driver hook and stores it
// on success. On failure the problems are recorded on the status error list
// and a ValidationError carrying them is returned; the lifecycle state
// stays pending so the failure is purely the caller's to handle. Must be
// called before TestConnection and PerformInitialization.
func (i *Initializer) ValidateConfiguration(cfg Config) error {
	name := i.driver.Name()
	i.startMeasurement(name, "validate_configuration")
	defer i.endMeasurement(name, "validate_configuration")

	problems := cfg.validateEnvelope()
	if len(problems) == 0 {
		if err := i.driver.ValidateConfig(cfg); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		verr := &ValidationError{Component: name, Problems: problems}
		for _, p := range problems {
			i.status.recordError(p)
		}
		i.detect(name, verr)
		i.emit(EventTypeComponentFailed, map[string]any{
			"component": name, "phase": "validation", "error": verr.Error(),
		})
		i.logger.Error("Configuration validation failed", "component", name, "problems", problems)
		return verr
	}

	i.config = cfg
	i.emit(EventTypeComponentValidated, map[string]any{"component": name})
	i.logger.Debug("Configuration validated", "component", name)
	return nil
}

// TestConnection probes the subsystem, retrying per the configuration's
// retry_attempts/retry_delay policy. Every failed attempt appends one error
// to the status; exhausting all attempts leaves the status failed and
// returns a ConnectionError wrapping the last cause. A successful probe
// leaves the lifecycle state untouched so PerformInitialization can still
// run.
func (i *Initializer) TestConnection(ctx context.Context) error {
	name := i.driver.Name()
	if i.config == nil {
		return fmt.Errorf("%w: %s", ErrConfigNotSet, name)
	}

	i.startMeasurement(name, "test_connection")
	defer i.endMeasurement(name, "test_connection")

	attempts := i.config.RetryAttempts() + 1
	delay := i.config.RetryDelay()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = i.probe(ctx)
		if lastErr == nil {
			i.emit(EventTypeComponentConnected, map[string]any{
				"component": name, "attempt": attempt,
			})
			i.logger.Debug("Connection test succeeded", "component", name, "attempt", attempt)
			return nil
		}

		i.status.AddError(fmt.Sprintf("connection attempt %d/%d failed: %v", attempt, attempts, lastErr))
		i.detect(name, lastErr)
		i.logger.Warn("Connection attempt failed",
			"component", name, "attempt", attempt, "attempts", attempts, "error", lastErr)

		if attempt < attempts && delay > 0 {
			i.sleep(delay)
		}
	}

	cerr := &ConnectionError{Component: name, Attempts: attempts, Err: lastErr}
	i.emit(EventTypeComponentFailed, map[string]any{
		"component": name, "phase": "connection", "error": cerr.Error(),
	})
	return cerr
}

// probe runs one driver probe under the advisory timeout, when configured.
func (i *Initializer) probe(ctx context.Context) error {
	if timeout := i.config.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return i.driver.Probe(ctx)
}

// PerformInitialization runs the driver's Setup hook, timing the whole
// lifecycle on the status. On success the status is marked initialized; on
// failure the error is recorded, the status marked failed, and an
// InitializationError re-raised so the state manager sees the failure.
func (i *Initializer) PerformInitialization(ctx context.Context) error {
	name := i.driver.Name()
	if i.config == nil {
		return fmt.Errorf("%w: %s", ErrConfigNotSet, name)
	}

	i.startMeasurement(name, "perform_initialization")
	defer i.endMeasurement(name, "perform_initialization")

	i.status.StartTiming()
	i.status.SetState(StateInitializing)

	if err := i.driver.Setup(ctx, i.status); err != nil {
		ierr := &InitializationError{Component: name, Err: err}
		i.status.AddError(ierr.Error())
		i.status.EndTiming()
		i.detect(name, err)
		i.emit(EventTypeComponentFailed, map[string]any{
			"component": name, "phase": "initialization", "error": ierr.Error(),
		})
		i.logger.Error("Initialization failed", "component", name, "error", err)
		return ierr
	}

	i.status.SetState(StateInitialized)
	i.status.EndTiming()
	i.emit(EventTypeComponentInitialized, map[string]any{
		"component": name, "duration": i.status.Duration().Seconds(),
	})
	i.logger.Info("Initialized component", "component", name, "duration", i.status.Duration())
	return nil
}

// Recheck re-probes an already initialized subsystem without touching its
// status; failures go to the error detector only. Used by the
// ConnectionRechecker.
func (i *Initializer) Recheck(ctx context.Context) error {
	if i.config == nil {
		return fmt.Errorf("%w: %s", ErrConfigNotSet, i.driver.Name())
	}
	var err error
	if r, ok := i.driver.(Recheckable); ok {
		err = r.Recheck(ctx)
	} else {
		err = i.probe(ctx)
	}
	if err != nil {
		i.detect(i.driver.Name(), err)
		i.emit(EventTypeComponentUnhealthy, map[string]any{
			"component": i.driver.Name(), "error": err.Error(),
		})
	}
	return err
}

// Reset returns the status to pending and drops the stored configuration,
// closing the driver when it holds resources.
func (i *Initializer) Reset(ctx context.Context) {
	if closer, ok := i.driver.(Closer); ok {
		if err := closer.Close(ctx); err != nil {
			i.logger.Warn("Failed to close driver on reset",
				"component", i.driver.Name(), "error", err)
		}
	}
	i.config = nil
	i.status.Reset()
}

func (i *Initializer) startMeasurement(component, operation string) {
	if i.monitor != nil {
		i.monitor.StartMeasurement(component, operation)
	}
}

func (i *Initializer) endMeasurement(component, operation string) {
	if i.monitor != nil {
		i.monitor.EndMeasurement(component, operation)
	}
}

func (i *Initializer) detect(component string, err error) {
	if i.detector != nil {
		i.detector.Detect(component, err)
	}
}

func (i *Initializer) emit(eventType string, data map[string]any) {
	i.emitter.Emit(context.Background(), eventType, data)
}
