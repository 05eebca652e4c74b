package bootstrap

import (
	"context"
	"fmt"
)

// node is the state manager's registry entry wrapping an initializer, its
// status and its dependency edges.
type node struct {
	name     string
	instance *Initializer
	config   Config
}

// StateManager owns the registry of named initializers and their dependency
// graph. It validates the graph at registration time, computes a
// deterministic initialization order, drives the three-operation lifecycle
// on each node and answers completion queries.
//
// Registration is expected to finish before any Initialize call begins;
// concurrent registration and initialization is undefined.
type StateManager struct {
	nodes   map[string]*node
	graph   *DependencyGraph
	emitter *EventEmitter
	logger  Logger
}

// StateManagerOption configures a StateManager.
type StateManagerOption func(*StateManager)

// WithManagerEmitter attaches a lifecycle event emitter that run-level
// events are sent to.
func WithManagerEmitter(emitter *EventEmitter) StateManagerOption {
	return func(m *StateManager) { m.emitter = emitter }
}

// NewStateManager creates an empty state manager. A nil logger is replaced
// with a silent one.
func NewStateManager(logger Logger, opts ...StateManagerOption) *StateManager {
	if logger == nil {
		logger = NoopLogger{}
	}
	m := &StateManager{
		nodes:  make(map[string]*node),
		graph:  NewDependencyGraph(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a named initializer with zero or more dependency names.
// Each dependency inserts the edge name -> dependency into the graph; if
// any edge would close a cycle the whole call fails atomically - no edges
// are committed and the node is not registered - returning a
// CircularDependencyError carrying the ordered cycle.
//
// Dependencies may name initializers that are registered later; they are
// checked for existence when an order is computed.
func (m *StateManager) Register(name string, instance *Initializer, dependencies ...string) error {
	if _, exists := m.nodes[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	existed := m.graph.HasNode(name)
	m.graph.AddNode(name)
	var added []string
	for _, dep := range dependencies {
		if err := m.graph.AddEdge(name, dep); err != nil {
			for _, committed := range added {
				m.graph.RemoveEdge(name, committed)
			}
			if !existed {
				m.graph.RemoveNode(name)
			}
			return err
		}
		added = append(added, dep)
	}

	m.nodes[name] = &node{name: name, instance: instance}
	m.logger.Debug("Registered initializer", "name", name, "dependencies", dependencies)
	return nil
}

// SetConfig stores the configuration handed to the node's
// ValidateConfiguration during Initialize.
func (m *StateManager) SetConfig(name string, cfg Config) error {
	n, err := m.lookup(name)
	if err != nil {
		return err
	}
	n.config = cfg
	return nil
}

// Dependencies returns the direct dependencies of name in registration
// order.
func (m *StateManager) Dependencies(name string) ([]string, error) {
	if _, err := m.lookup(name); err != nil {
		return nil, err
	}
	return m.graph.Dependencies(name), nil
}

// TransitiveDependencies returns everything name depends on, directly or
// indirectly.
func (m *StateManager) TransitiveDependencies(name string) ([]string, error) {
	if _, err := m.lookup(name); err != nil {
		return nil, err
	}
	return m.graph.TransitiveDependencies(name), nil
}

// HasDependencies reports whether name declares any dependency.
func (m *StateManager) HasDependencies(name string) (bool, error) {
	deps, err := m.Dependencies(name)
	if err != nil {
		return false, err
	}
	return len(deps) > 0, nil
}

// InitializationOrder computes the deterministic bring-up order over the
// whole registry: for every edge A -> B, B comes before A; ties are broken
// by registration order, so repeated calls over the same graph return the
// same sequence.
func (m *StateManager) InitializationOrder() ([]string, error) {
	order, err := m.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	for _, name := range order {
		if _, registered := m.nodes[name]; !registered {
			return nil, fmt.Errorf("%w: %s", ErrInitializerNotFound, name)
		}
	}
	m.logger.Debug("Initialization order resolved", "order", order)
	return order, nil
}

// Initialize runs the full lifecycle on the named node, first walking its
// unmet dependencies recursively so callers need not drive names in order
// themselves. A failure anywhere propagates, leaving that node's status
// failed and its dependents un-run.
func (m *StateManager) Initialize(ctx context.Context, name string) error {
	n, err := m.lookup(name)
	if err != nil {
		return err
	}
	for _, dep := range m.graph.Dependencies(name) {
		depNode, err := m.lookup(dep)
		if err != nil {
			return fmt.Errorf("%w: %s depends on %s", ErrDependencyMissing, name, dep)
		}
		if depNode.instance.Status().IsSuccess() {
			continue
		}
		if err := m.Initialize(ctx, dep); err != nil {
			return err
		}
	}
	return m.initializeNode(ctx, n)
}

// initializeNode drives validate -> test -> perform on one node and marks
// its status complete on success.
func (m *StateManager) initializeNode(ctx context.Context, n *node) error {
	if n.instance.Status().IsSuccess() {
		return nil
	}

	// A caller may have validated directly on the initializer; don't undo
	// that with a nil config when none was registered here.
	if n.config != nil || n.instance.Config() == nil {
		if err := n.instance.ValidateConfiguration(n.config); err != nil {
			return err
		}
	}
	if err := n.instance.TestConnection(ctx); err != nil {
		return err
	}
	if err := n.instance.PerformInitialization(ctx); err != nil {
		return err
	}
	n.instance.Status().MarkComplete()
	return nil
}

// InitializeAll brings up every registered initializer in dependency order,
// emitting run-level lifecycle events. The first failure halts the run and
// propagates; the orchestration caller decides whether to retry or abort.
func (m *StateManager) InitializeAll(ctx context.Context) error {
	order, err := m.InitializationOrder()
	if err != nil {
		return err
	}

	m.emitter.Emit(ctx, EventTypeInitializationStarted, map[string]any{"count": len(order)})
	for _, name := range order {
		if err := m.Initialize(ctx, name); err != nil {
			m.emitter.Emit(ctx, EventTypeInitializationFailed, map[string]any{
				"component": name, "error": err.Error(),
			})
			return err
		}
	}
	m.emitter.Emit(ctx, EventTypeInitializationCompleted, map[string]any{"count": len(order)})
	m.logger.Info("All initializers complete", "count", len(order))
	return nil
}

// IsComplete reports whether the named node's status reached a success
// terminal state.
func (m *StateManager) IsComplete(name string) (bool, error) {
	n, err := m.lookup(name)
	if err != nil {
		return false, err
	}
	return n.instance.Status().IsSuccess(), nil
}

// IsAllComplete reports whether every registered node reached a success
// terminal state. An empty registry is trivially complete.
func (m *StateManager) IsAllComplete() bool {
	for _, n := range m.nodes {
		if !n.instance.Status().IsSuccess() {
			return false
		}
	}
	return true
}

// Status returns the named node's status object.
func (m *StateManager) Status(name string) (*Status, error) {
	n, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return n.instance.Status(), nil
}

// Initializer returns the named node's initializer instance.
func (m *StateManager) Initializer(name string) (*Initializer, error) {
	n, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return n.instance, nil
}

// UpdateStatus replaces a node's status wholesale with externally-computed
// state, e.g. after async work outside the framework.
func (m *StateManager) UpdateStatus(name string, status *Status) error {
	n, err := m.lookup(name)
	if err != nil {
		return err
	}
	n.instance.status = status
	return nil
}

// Names returns the registered names in registration order.
func (m *StateManager) Names() []string {
	return m.graph.Nodes()
}

// Report returns the snapshot of every node's status keyed by name - the
// report surface an orchestration caller serves over its CLI or HTTP layer.
func (m *StateManager) Report() map[string]map[string]any {
	report := make(map[string]map[string]any, len(m.nodes))
	for name, n := range m.nodes {
		report[name] = n.instance.Status().Snapshot()
	}
	return report
}

// Reset returns every node's status to pending without removing nodes or
// edges. Resetting twice yields the same observable state as once.
func (m *StateManager) Reset(ctx context.Context) {
	for _, n := range m.nodes {
		n.instance.Reset(ctx)
	}
}

// Clear removes every node and the whole dependency graph.
func (m *StateManager) Clear(ctx context.Context) {
	m.Reset(ctx)
	m.nodes = make(map[string]*node)
	m.graph = NewDependencyGraph()
}

func (m *StateManager) lookup(name string) (*node, error) {
	n, exists := m.nodes[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrInitializerNotFound, name)
	}
	return n, nil
}
