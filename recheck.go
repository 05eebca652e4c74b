package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// ConnectionRechecker periodically re-probes initialized subsystems on a
// cron schedule, feeding failures to the shared error detector and emitting
// component.unhealthy events. It never mutates node statuses: a recheck is
// observability, not a new initialization attempt.
type ConnectionRechecker struct {
	manager *StateManager
	logger  Logger

	mu        sync.Mutex
	scheduler *cron.Cron
	entries   map[string]cron.EntryID
	started   bool
}

// NewConnectionRechecker creates a rechecker over the manager's registry.
func NewConnectionRechecker(manager *StateManager, logger Logger) *ConnectionRechecker {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &ConnectionRechecker{
		manager:   manager,
		logger:    logger,
		scheduler: cron.New(),
		entries:   make(map[string]cron.EntryID),
	}
}

// Schedule re-probes the named initializer on the cron spec, e.g.
// "@every 30s". Scheduling the same name again replaces its previous
// schedule. Only nodes that already reached success are probed; others are
// skipped until they do.
func (r *ConnectionRechecker) Schedule(name, spec string) error {
	if _, err := r.manager.Initializer(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, exists := r.entries[name]; exists {
		r.scheduler.Remove(id)
	}
	id, err := r.scheduler.AddFunc(spec, func() { r.recheck(name) })
	if err != nil {
		return fmt.Errorf("failed to schedule recheck for %s: %w", name, err)
	}
	r.entries[name] = id
	r.logger.Debug("Scheduled connection recheck", "component", name, "spec", spec)
	return nil
}

// ScheduleAll applies one cron spec to every currently registered
// initializer.
func (r *ConnectionRechecker) ScheduleAll(spec string) error {
	for _, name := range r.manager.Names() {
		if err := r.Schedule(name, spec); err != nil {
			return err
		}
	}
	return nil
}

func (r *ConnectionRechecker) recheck(name string) {
	ok, err := r.manager.IsComplete(name)
	if err != nil || !ok {
		return
	}
	instance, err := r.manager.Initializer(name)
	if err != nil {
		return
	}
	if err := instance.Recheck(context.Background()); err != nil {
		r.logger.Warn("Connection recheck failed", "component", name, "error", err)
		return
	}
	r.logger.Debug("Connection recheck passed", "component", name)
}

// Start begins executing scheduled rechecks. Starting twice is a no-op.
func (r *ConnectionRechecker) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.scheduler.Start()
	r.started = true
}

// Stop halts scheduling and waits for any in-flight recheck to finish.
func (r *ConnectionRechecker) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	<-r.scheduler.Stop().Done()
	r.started = false
}
