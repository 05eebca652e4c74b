package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// testLogger captures log lines for assertions.
type testLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *testLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *testLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *testLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *testLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *testLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }

// fakeDriver is a scriptable Driver for exercising the lifecycle template.
type fakeDriver struct {
	name        string
	validateErr error
	probeErr    error
	probeAfter  int // succeed once probeCalls exceeds this, when probeErr set
	setupErr    error
	setupFn     func(status *Status)

	probeCalls int
	setupCalls int
}

func (d *fakeDriver) Name() string {
	if d.name == "" {
		return "fake"
	}
	return d.name
}

func (d *fakeDriver) ValidateConfig(Config) error { return d.validateErr }

func (d *fakeDriver) Probe(context.Context) error {
	d.probeCalls++
	if d.probeErr != nil && (d.probeAfter == 0 || d.probeCalls <= d.probeAfter) {
		return d.probeErr
	}
	return nil
}

func (d *fakeDriver) Setup(_ context.Context, status *Status) error {
	d.setupCalls++
	if d.setupErr != nil {
		return d.setupErr
	}
	if d.setupFn != nil {
		d.setupFn(status)
	}
	return nil
}

var errProbeRefused = errors.New("connection refused")

// newTestInitializer wires a fake driver with instant retries.
func newTestInitializer(driver *fakeDriver, opts ...InitializerOption) *Initializer {
	i := NewInitializer(driver, opts...)
	i.sleep = func(time.Duration) {}
	return i
}
