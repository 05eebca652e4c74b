package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cucumber/godog"
)

// Lifecycle BDD test context
type lifecycleBDDContext struct {
	manager  *StateManager
	emitter  *EventEmitter
	observer *bddEventObserver
	drivers  map[string]*fakeDriver

	lastRegisterErr error
	lastValidateErr error
	lastInitErr     error
}

// bddEventObserver captures events for assertions
type bddEventObserver struct {
	mu     sync.Mutex
	events []cloudevents.Event
}

func (o *bddEventObserver) OnEvent(_ context.Context, event cloudevents.Event) error {
	o.mu.Lock()
	o.events = append(o.events, event)
	o.mu.Unlock()
	return nil
}

func (o *bddEventObserver) ObserverID() string { return "bdd-observer" }

func (o *bddEventObserver) eventsOfType(eventType string) []cloudevents.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []cloudevents.Event
	for _, event := range o.events {
		if event.Type() == eventType {
			out = append(out, event)
		}
	}
	return out
}

func (ctx *lifecycleBDDContext) reset() error {
	ctx.observer = &bddEventObserver{}
	ctx.emitter = NewEventEmitter("bootstrap-bdd", nil)
	ctx.manager = NewStateManager(nil, WithManagerEmitter(ctx.emitter))
	ctx.drivers = make(map[string]*fakeDriver)
	ctx.lastRegisterErr = nil
	ctx.lastValidateErr = nil
	ctx.lastInitErr = nil
	return nil
}

func (ctx *lifecycleBDDContext) register(name string, driver *fakeDriver, deps ...string) error {
	ctx.drivers[name] = driver
	instance := newTestInitializer(driver, WithEmitter(ctx.emitter))
	ctx.lastRegisterErr = ctx.manager.Register(name, instance, deps...)
	if ctx.lastRegisterErr != nil {
		return nil
	}
	return ctx.manager.SetConfig(name, Config{})
}

func (ctx *lifecycleBDDContext) aSubsystemWithNoDependencies(name string) error {
	return ctx.register(name, &fakeDriver{name: name})
}

func (ctx *lifecycleBDDContext) aSubsystemDependingOn(name, dep string) error {
	return ctx.register(name, &fakeDriver{name: name}, dep)
}

func (ctx *lifecycleBDDContext) iRegisterASubsystemDependingOn(name, dep string) error {
	return ctx.register(name, &fakeDriver{name: name}, dep)
}

func (ctx *lifecycleBDDContext) aSubsystemWhoseConnectionAlwaysFails(name string) error {
	return ctx.register(name, &fakeDriver{name: name, probeErr: errProbeRefused})
}

func (ctx *lifecycleBDDContext) aSubsystemWhoseSetupFails(name string) error {
	return ctx.register(name, &fakeDriver{name: name, setupErr: errors.New("setup exploded")})
}

func (ctx *lifecycleBDDContext) theSubsystemIsConfiguredWithRetryAttempts(name string, attempts int) error {
	return ctx.manager.SetConfig(name, Config{"retry_attempts": attempts})
}

func (ctx *lifecycleBDDContext) eventObservationIsEnabled() error {
	ctx.emitter.RegisterObserver(ctx.observer)
	return nil
}

func (ctx *lifecycleBDDContext) iInitializeAllSubsystems() error {
	ctx.lastInitErr = ctx.manager.InitializeAll(context.Background())
	return nil
}

func (ctx *lifecycleBDDContext) iValidateTheConfigurationWithAMissingRequiredField(name string) error {
	instance, err := ctx.manager.Initializer(name)
	if err != nil {
		return err
	}
	ctx.drivers[name].validateErr = errors.New("Host cannot be empty")
	ctx.lastValidateErr = instance.ValidateConfiguration(Config{})
	return nil
}

func (ctx *lifecycleBDDContext) theInitializationOrderShouldBe(expected string) error {
	order, err := ctx.manager.InitializationOrder()
	if err != nil {
		return err
	}
	got := strings.Join(order, ", ")
	if got != expected {
		return fmt.Errorf("expected order %q, got %q", expected, got)
	}
	return nil
}

func (ctx *lifecycleBDDContext) everySubsystemShouldReportStatus(expected string) error {
	for _, name := range ctx.manager.Names() {
		if err := ctx.theSubsystemShouldReportStatus(name, expected); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *lifecycleBDDContext) theSubsystemShouldReportStatus(name, expected string) error {
	status, err := ctx.manager.Status(name)
	if err != nil {
		return err
	}
	if status.State().String() != expected {
		return fmt.Errorf("subsystem %s reports %q, expected %q", name, status.State(), expected)
	}
	return nil
}

func (ctx *lifecycleBDDContext) theRegistrationShouldFailWithACircularDependency() error {
	if !errors.Is(ctx.lastRegisterErr, ErrCircularDependency) {
		return fmt.Errorf("expected a circular dependency error, got %v", ctx.lastRegisterErr)
	}
	return nil
}

func (ctx *lifecycleBDDContext) theSubsystemShouldNotBeRegistered(name string) error {
	if _, err := ctx.manager.Initializer(name); !errors.Is(err, ErrInitializerNotFound) {
		return fmt.Errorf("expected %s to be unregistered, lookup returned %v", name, err)
	}
	return nil
}

func (ctx *lifecycleBDDContext) theValidationShouldFail() error {
	if !errors.Is(ctx.lastValidateErr, ErrValidationFailed) {
		return fmt.Errorf("expected a validation error, got %v", ctx.lastValidateErr)
	}
	return nil
}

func (ctx *lifecycleBDDContext) theStatusShouldRecordTheProblem(name string) error {
	status, err := ctx.manager.Status(name)
	if err != nil {
		return err
	}
	if !status.HasErrors() {
		return fmt.Errorf("expected %s to have recorded errors", name)
	}
	return nil
}

func (ctx *lifecycleBDDContext) theInitializationShouldFail() error {
	if ctx.lastInitErr == nil {
		return errors.New("expected initialization to fail")
	}
	return nil
}

func (ctx *lifecycleBDDContext) theInitializationShouldFailWithAConnectionError() error {
	if !errors.Is(ctx.lastInitErr, ErrConnectionFailed) {
		return fmt.Errorf("expected a connection error, got %v", ctx.lastInitErr)
	}
	return nil
}

func (ctx *lifecycleBDDContext) theStatusShouldRecordErrors(name string, count int) error {
	status, err := ctx.manager.Status(name)
	if err != nil {
		return err
	}
	if got := len(status.Errors()); got != count {
		return fmt.Errorf("expected %d recorded errors for %s, got %d: %v", count, name, got, status.Errors())
	}
	return nil
}

func (ctx *lifecycleBDDContext) anEventShouldBeEmitted(eventType string) error {
	if len(ctx.observer.eventsOfType(eventType)) == 0 {
		return fmt.Errorf("no %s event was emitted", eventType)
	}
	return nil
}

func (ctx *lifecycleBDDContext) anInitializationStartedEventShouldBeEmitted() error {
	return ctx.anEventShouldBeEmitted(EventTypeInitializationStarted)
}

func (ctx *lifecycleBDDContext) anInitializationCompletedEventShouldBeEmitted() error {
	return ctx.anEventShouldBeEmitted(EventTypeInitializationCompleted)
}

func (ctx *lifecycleBDDContext) aComponentInitializedEventShouldBeEmittedFor(name string) error {
	for _, event := range ctx.observer.eventsOfType(EventTypeComponentInitialized) {
		var data map[string]any
		if err := event.DataAs(&data); err != nil {
			return err
		}
		if data["component"] == name {
			return nil
		}
	}
	return fmt.Errorf("no component initialized event for %s", name)
}

// Test runner function
func TestInitializationLifecycleBDD(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			testCtx := &lifecycleBDDContext{}

			// Background
			sc.Step(`^an empty state manager$`, testCtx.reset)

			// Registration steps
			sc.Step(`^a subsystem "([^"]*)" with no dependencies$`, testCtx.aSubsystemWithNoDependencies)
			sc.Step(`^a subsystem "([^"]*)" depending on "([^"]*)"$`, testCtx.aSubsystemDependingOn)
			sc.Step(`^I register a subsystem "([^"]*)" depending on "([^"]*)"$`, testCtx.iRegisterASubsystemDependingOn)
			sc.Step(`^a subsystem "([^"]*)" whose connection always fails$`, testCtx.aSubsystemWhoseConnectionAlwaysFails)
			sc.Step(`^a subsystem "([^"]*)" whose setup fails$`, testCtx.aSubsystemWhoseSetupFails)
			sc.Step(`^the subsystem "([^"]*)" is configured with (\d+) retry attempts$`, testCtx.theSubsystemIsConfiguredWithRetryAttempts)
			sc.Step(`^event observation is enabled$`, testCtx.eventObservationIsEnabled)

			// Lifecycle steps
			sc.Step(`^I initialize all subsystems$`, testCtx.iInitializeAllSubsystems)
			sc.Step(`^I validate the configuration of "([^"]*)" with a missing required field$`, testCtx.iValidateTheConfigurationWithAMissingRequiredField)

			// Assertion steps
			sc.Step(`^the initialization order should be "([^"]*)"$`, testCtx.theInitializationOrderShouldBe)
			sc.Step(`^every subsystem should report status "([^"]*)"$`, testCtx.everySubsystemShouldReportStatus)
			sc.Step(`^the subsystem "([^"]*)" should report status "([^"]*)"$`, testCtx.theSubsystemShouldReportStatus)
			sc.Step(`^the registration should fail with a circular dependency$`, testCtx.theRegistrationShouldFailWithACircularDependency)
			sc.Step(`^the subsystem "([^"]*)" should not be registered$`, testCtx.theSubsystemShouldNotBeRegistered)
			sc.Step(`^the validation should fail$`, testCtx.theValidationShouldFail)
			sc.Step(`^the status of "([^"]*)" should record the problem$`, testCtx.theStatusShouldRecordTheProblem)
			sc.Step(`^the initialization should fail$`, testCtx.theInitializationShouldFail)
			sc.Step(`^the initialization should fail with a connection error$`, testCtx.theInitializationShouldFailWithAConnectionError)
			sc.Step(`^the status of "([^"]*)" should record (\d+) errors$`, testCtx.theStatusShouldRecordErrors)
			sc.Step(`^an initialization started event should be emitted$`, testCtx.anInitializationStartedEventShouldBeEmitted)
			sc.Step(`^an initialization completed event should be emitted$`, testCtx.anInitializationCompletedEventShouldBeEmitted)
			sc.Step(`^a component initialized event should be emitted for "([^"]*)"$`, testCtx.aComponentInitializedEventShouldBeEmittedFor)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
